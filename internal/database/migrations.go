package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
)

// RunMigrations executes pending SQL migration files for the active dialect.
// Migrations live under <migrationsPath>/<dialect>/ and run in filename order;
// applied filenames are tracked in the migrations table.
func (db *DB) RunMigrations(migrationsPath string) error {
	if err := db.createMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	dir := filepath.Join(migrationsPath, db.Dialect.MigrationsSubdir())
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}

	sort.Strings(files)

	for _, file := range files {
		filename := filepath.Base(file)

		applied, err := db.hasMigrationRun(filename)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if applied {
			continue
		}

		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", filename, err)
		}

		if _, err := db.DB.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", filename, err)
		}

		if err := db.recordMigration(filename); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", filename, err)
		}

		log.Printf("Migration completed: %s", filename)
	}

	return nil
}

func (db *DB) createMigrationsTable() error {
	var query string
	switch db.Dialect.(type) {
	case *PostgresDialect:
		query = `
			CREATE TABLE IF NOT EXISTS migrations (
				id BIGSERIAL PRIMARY KEY,
				filename TEXT UNIQUE NOT NULL,
				executed_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
			);
		`
	case *MySQLDialect:
		query = `
			CREATE TABLE IF NOT EXISTS migrations (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				filename VARCHAR(255) UNIQUE NOT NULL,
				executed_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6)
			);
		`
	default:
		query = `
			CREATE TABLE IF NOT EXISTS migrations (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				filename TEXT UNIQUE NOT NULL,
				executed_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);
		`
	}
	_, err := db.DB.Exec(query)
	return err
}

func (db *DB) hasMigrationRun(filename string) (bool, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM migrations WHERE filename = ?", filename).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (db *DB) recordMigration(filename string) error {
	_, err := db.Exec("INSERT INTO migrations (filename) VALUES (?)", filename)
	return err
}
