package database

import (
	"database/sql"
	"regexp"
	"strconv"
)

// Dialect abstracts the differences between the supported SQL databases
type Dialect interface {
	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN builds the data source name from the dialect config
	DSN(config DialectConfig) string

	// Rewrite converts ? placeholders to the dialect's syntax if needed
	Rewrite(query string) string

	// SupportsLastInsertId reports whether the driver implements LastInsertId()
	SupportsLastInsertId() bool

	// Configure applies connection pool and session settings
	Configure(db *sql.DB) error

	// MigrationsSubdir returns the migrations subdirectory for this dialect
	MigrationsSubdir() string
}

// DialectConfig holds connection parameters for a dialect
type DialectConfig struct {
	// Path is used by SQLite
	Path string

	// URL is used by PostgreSQL and MySQL
	URL string
}

var placeholderPattern = regexp.MustCompile(`\?`)

// numberPlaceholders converts ? placeholders to $1, $2, ... for PostgreSQL
func numberPlaceholders(query string) string {
	n := 0
	return placeholderPattern.ReplaceAllStringFunc(query, func(string) string {
		n++
		return "$" + strconv.Itoa(n)
	})
}
