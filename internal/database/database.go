package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/catalog/internal/config"
	"github.com/mrlokans/catalog/internal/entities"
)

// sqliteDriverName is go-sqlite3 with LOWER replaced by a Unicode-aware
// version. The built-in one only folds ASCII letters.
const sqliteDriverName = "sqlite3_catalog"

func init() {
	sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", unicodeLower, true)
		},
	})
}

func unicodeLower(v any) any {
	switch s := v.(type) {
	case string:
		return strings.ToLower(s)
	case []byte:
		return strings.ToLower(string(s))
	default:
		return v
	}
}

func sqliteDialector(path string) gorm.Dialector {
	return sqlite.New(sqlite.Config{DriverName: sqliteDriverName, DSN: path})
}

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens (or creates) a SQLite catalog database at dbPath.
func NewDatabase(dbPath string) (*Database, error) {
	return open(sqliteDialector(dbPath), dbPath, logger.Warn)
}

// NewDatabaseFromConfig opens the store selected by cfg.Driver.
func NewDatabaseFromConfig(cfg config.Database) (*Database, error) {
	level := parseLogLevel(cfg.LogLevel)

	switch cfg.Driver {
	case config.DatabaseDriverSQLite, "":
		return open(sqliteDialector(cfg.Path), cfg.Path, level)
	case config.DatabaseDriverPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("DATABASE_DSN is required for the postgres driver")
		}
		return open(postgres.Open(cfg.DSN), "postgres", level)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func open(dialector gorm.Dialector, location string, level logger.LogLevel) (*Database, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.Book{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", location)

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping verifies the underlying connection is alive.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
