package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
)

// queueDSNOptions keeps the queue usable while the catalog database is busy.
const queueDSNOptions = "?_journal=WAL&_timeout=5000&_busy_timeout=5000"

// Client runs catalog maintenance tasks on a backlite queue stored in its
// own SQLite file.
type Client struct {
	queue   *backlite.Client
	store   *sql.DB
	workers int
	running atomic.Bool
}

// DatabasePath returns where the task queue keeps its SQLite file:
// next to the catalog database, with a "-tasks" suffix.
func DatabasePath(catalogDBPath string) string {
	ext := filepath.Ext(catalogDBPath)
	return strings.TrimSuffix(catalogDBPath, ext) + "-tasks" + ext
}

// NewClient opens the queue database, installs the backlite schema and
// returns a client ready for Register.
func NewClient(catalogDBPath string, cfg Config) (*Client, error) {
	workers := max(cfg.Workers, 1)

	store, err := openQueueStore(DatabasePath(catalogDBPath), workers)
	if err != nil {
		return nil, err
	}

	queue, err := backlite.NewClient(backlite.ClientConfig{
		DB:              store,
		NumWorkers:      workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          queueLogger{},
	})
	if err == nil {
		err = queue.Install()
	}
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to set up task queue: %w", err)
	}

	return &Client{queue: queue, store: store, workers: workers}, nil
}

func openQueueStore(path string, workers int) (*sql.DB, error) {
	store, err := sql.Open("sqlite3", path+queueDSNOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to open tasks database: %w", err)
	}
	// Workers hold a connection each; the rest serve Add and Status.
	store.SetMaxOpenConns(workers + 5)
	store.SetMaxIdleConns(workers + 2)
	store.SetConnMaxLifetime(time.Hour)
	return store, nil
}

// Register adds queues to the client. Call before Start.
func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.queue.Register(q)
	}
}

// Start launches the workers. Repeated calls are ignored.
func (c *Client) Start(ctx context.Context) {
	if !c.running.CompareAndSwap(false, true) {
		return
	}
	log.Printf("Task queue started with %d workers", c.workers)
	c.queue.Start(ctx)
}

// Stop waits for running tasks until ctx expires and reports whether every
// worker finished in time. Stopping a client that never started succeeds.
func (c *Client) Stop(ctx context.Context) bool {
	if !c.running.Load() {
		return true
	}

	log.Println("Stopping task queue...")
	if c.queue.Stop(ctx) {
		return true
	}
	log.Println("Task queue stopped with timeout (some tasks may not have completed)")
	return false
}

// Close releases the queue database. Call after Stop.
func (c *Client) Close() error {
	return c.store.Close()
}

// Add starts an operation to enqueue one or more tasks.
func (c *Client) Add(tasks ...backlite.Task) *backlite.TaskAddOp {
	return c.queue.Add(tasks...)
}

// Status reports the state of a task by ID.
func (c *Client) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return c.queue.Status(ctx, taskID)
}

// queueLogger prints backlite's key/value pairs as "key=value".
type queueLogger struct{}

func (queueLogger) Info(message string, params ...any) {
	log.Print("tasks: " + formatQueueLog(message, params))
}

func (queueLogger) Error(message string, params ...any) {
	log.Print("tasks: error: " + formatQueueLog(message, params))
}

func formatQueueLog(message string, params []any) string {
	var b strings.Builder
	b.WriteString(message)
	for i := 0; i < len(params); i += 2 {
		if i+1 < len(params) {
			fmt.Fprintf(&b, " %v=%v", params[i], params[i+1])
		} else {
			fmt.Fprintf(&b, " %v", params[i])
		}
	}
	return b.String()
}
