package database

import (
	"testing"
)

func TestDialectSQLite(t *testing.T) {
	dialect := NewSQLiteDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "sqlite3"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		if !dialect.SupportsLastInsertId() {
			t.Error("SupportsLastInsertId() should return true for SQLite")
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "sqlite"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})

	t.Run("Rewrite", func(t *testing.T) {
		query := "SELECT * FROM tasks WHERE id = ? AND family_id = ?"
		if got := dialect.Rewrite(query); got != query {
			t.Errorf("Rewrite() should leave ? placeholders untouched, got %v", got)
		}
	})
}

func TestDialectPostgreSQL(t *testing.T) {
	dialect := NewPostgresDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "postgres"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		if dialect.SupportsLastInsertId() {
			t.Error("SupportsLastInsertId() should return false for PostgreSQL")
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "postgres"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})

	t.Run("Rewrite", func(t *testing.T) {
		query := "SELECT * FROM tasks WHERE id = ? AND family_id = ?"
		expected := "SELECT * FROM tasks WHERE id = $1 AND family_id = $2"
		if got := dialect.Rewrite(query); got != expected {
			t.Errorf("Rewrite() = %v, want %v", got, expected)
		}
	})
}

func TestDialectMySQL(t *testing.T) {
	dialect := NewMySQLDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "mysql"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		if !dialect.SupportsLastInsertId() {
			t.Error("SupportsLastInsertId() should return true for MySQL")
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "mysql"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})

	t.Run("Rewrite", func(t *testing.T) {
		query := "SELECT * FROM tasks WHERE id = ?"
		if got := dialect.Rewrite(query); got != query {
			t.Errorf("Rewrite() should leave ? placeholders untouched, got %v", got)
		}
	})
}

func TestNumberPlaceholders(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "no placeholders",
			query: "SELECT COUNT(*) FROM users",
			want:  "SELECT COUNT(*) FROM users",
		},
		{
			name:  "single placeholder",
			query: "SELECT * FROM users WHERE id = ?",
			want:  "SELECT * FROM users WHERE id = $1",
		},
		{
			name:  "many placeholders numbered in order",
			query: "INSERT INTO redemptions (reward_id, user_id, points_spent) VALUES (?, ?, ?)",
			want:  "INSERT INTO redemptions (reward_id, user_id, points_spent) VALUES ($1, $2, $3)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := numberPlaceholders(tt.query); got != tt.want {
				t.Errorf("numberPlaceholders() = %v, want %v", got, tt.want)
			}
		})
	}
}
