package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mrlokans/catalog/internal/audit"
	"github.com/mrlokans/catalog/internal/config"
	"github.com/mrlokans/catalog/internal/database"
	auditrepo "github.com/mrlokans/catalog/internal/database/audit"
	"github.com/mrlokans/catalog/internal/database/books"
	http_controllers "github.com/mrlokans/catalog/internal/http"
	"github.com/mrlokans/catalog/internal/readonly"
	"github.com/mrlokans/catalog/internal/scheduler"
	"github.com/mrlokans/catalog/internal/services"
	"github.com/mrlokans/catalog/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server at %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill -9 can't be caught, so only SIGINT and SIGTERM are handled
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	// Background work stops after in-flight requests have drained
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Catalog v%s", version)

	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	catalog := services.NewCatalogService(books.NewRepository(db.DB))

	// Background work shares one lifetime, cancelled on shutdown
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	routerCfg := http_controllers.RouterConfig{
		Catalog:            catalog,
		Database:           db,
		ReadOnly:           readonly.NewMiddleware(cfg.ReadOnly.Enabled),
		AuditRetentionDays: cfg.Audit.RetentionDays,
		Version:            version,
	}

	if cfg.ReadOnly.Enabled {
		log.Printf("Read-only mode enabled - write operations will be blocked")
	}

	if cfg.RateLimit.Enabled {
		routerCfg.RateLimiter = http_controllers.NewRateLimiter(bgCtx, cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	var auditService *audit.Service
	if cfg.Audit.Enabled {
		auditService = audit.NewService(auditrepo.NewRepository(db.DB))
		routerCfg.Auditor = auditService
		routerCfg.AuditReader = auditService
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		})
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(tasks.NewCleanupAuditEventsQueue(auditCleaner(auditService)))
		go taskClient.Start(bgCtx)
		routerCfg.TaskClient = taskClient
	}

	var cleanupScheduler *scheduler.AuditCleanupScheduler
	if auditService != nil {
		cleanupScheduler = scheduler.NewAuditCleanupScheduler(
			cfg.Audit.CleanupSchedule,
			cfg.Audit.RetentionDays,
			cleanupFunc(taskClient, auditService),
		)
		if err := cleanupScheduler.Start(bgCtx); err != nil {
			log.Printf("WARNING: audit cleanup scheduler not started: %v", err)
		}
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if cleanupScheduler != nil {
			cleanupScheduler.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		bgCancel()
		if auditService != nil {
			auditService.Shutdown()
		}
	}

	Serve(router, cfg, onShutdown)
}

// auditCleaner keeps a nil service from becoming a non-nil interface.
func auditCleaner(svc *audit.Service) tasks.AuditEventCleaner {
	if svc == nil {
		return nil
	}
	return svc
}

// cleanupFunc enqueues cleanups when the task queue runs and otherwise
// executes them inline.
func cleanupFunc(client *tasks.Client, cleaner tasks.AuditEventCleaner) scheduler.CleanupFunc {
	if client != nil {
		return func(ctx context.Context, task tasks.CleanupAuditEventsTask) error {
			_, err := client.Add(task).Ctx(ctx).Save()
			return err
		}
	}
	process := tasks.CleanupAuditEventsProcessor(cleaner)
	return func(ctx context.Context, task tasks.CleanupAuditEventsTask) error {
		return process(ctx, task)
	}
}
