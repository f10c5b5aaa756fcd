// backend/src/database/database.go
package database

import (
	"database/sql"
	"errors"
	"fmt"
	stdlog "log"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/username/finsight/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

// InitDB opens the SQLite database and stores the handle in the package-level DB.
// WAL mode and foreign keys are required by the schema; a single connection
// avoids SQLITE_BUSY under concurrent writes.
func InitDB(databasePath string) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)", databasePath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		stdlog.Fatalf("failed to ping database: %v", err)
	}
	DB = db
	logger.L.Info("Database connection established", "path", databasePath)
}

// RunMigrations applies all pending migrations from the db/migrations
// directory next to the working directory. InitDB must run first.
func RunMigrations(databasePath string) {
	if DB == nil {
		stdlog.Fatal("database connection not initialized before migrations")
	}

	driver, err := sqlite.WithInstance(DB, &sqlite.Config{})
	if err != nil {
		stdlog.Fatalf("could not create sqlite migration driver: %v", err)
	}

	sourceURL := os.Getenv("MIGRATIONS_URL")
	if sourceURL == "" {
		cwd, err := os.Getwd()
		if err != nil {
			stdlog.Fatalf("failed to get current working directory: %v", err)
		}
		sourceURL = "file://" + filepath.ToSlash(filepath.Join(cwd, "db", "migrations"))
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, databasePath, driver)
	if err != nil {
		logger.L.Error("Migration instance creation failed", "source", sourceURL, "error", err)
		stdlog.Fatalf("migration instance creation failed: %v", err)
	}

	logger.L.Info("Applying database migrations", "source", sourceURL)
	switch err = m.Up(); {
	case err == nil:
		logger.L.Info("Database migrations applied")
	case errors.Is(err, migrate.ErrNoChange):
		logger.L.Info("Database schema already up to date")
	default:
		stdlog.Fatalf("failed to apply migrations: %v", err)
	}
}
