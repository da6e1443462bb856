package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"formhook/internal/platform/config"
)

func TestRequireHost(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forms.db")
	db, err := NewDB(config.DatabaseConfig{URL: "file:" + path, MaxConnections: 1})
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	if err := RequireHost(ctx, db); !errors.Is(err, ErrHostMissing) {
		t.Fatalf("Expected ErrHostMissing, got %v", err)
	}

	if _, err := db.Exec(`CREATE TABLE forms (id INTEGER PRIMARY KEY, title TEXT NOT NULL, status TEXT NOT NULL)`); err != nil {
		t.Fatalf("Failed to create forms table: %v", err)
	}

	if err := RequireHost(ctx, db); err != nil {
		t.Errorf("Expected host to be present, got %v", err)
	}
}
