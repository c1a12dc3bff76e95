package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"filetree-search/internal/database"
)

func setupTestDB(t *testing.T) *database.Database {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close database: %v", err)
		}
	})
	return db
}

func TestDefaultTimeout(t *testing.T) {
	if defaultTimeout != 30*time.Second {
		t.Errorf("defaultTimeout = %v, want 30s", defaultTimeout)
	}
}

// resetPassword refuses to run before initial setup has happened through
// the web interface.
func TestResetPasswordNoUsersIntegration(t *testing.T) {
	db := setupTestDB(t)

	if resetPassword(context.Background(), db) {
		t.Error("Expected resetPassword to return false when no users exist")
	}
}

func TestShowStatusIntegration(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// No users yet; must not panic.
	showStatus(ctx, db)

	if err := db.CreateUser(ctx, "testpassword123"); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	showStatus(ctx, db)

	if !db.HasUsers(ctx) {
		t.Error("Expected user to exist after creation")
	}
}

func TestOpenDatabaseUsesEnvDirIntegration(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("DATABASE_DIR", tempDir)

	db, err := openDatabase(context.Background())
	if err != nil {
		t.Fatalf("openDatabase failed: %v", err)
	}
	defer db.Close()

	check, err := database.New(context.Background(), filepath.Join(tempDir, "library.db"))
	if err != nil {
		t.Fatalf("database file not usable at expected path: %v", err)
	}
	check.Close()
}

func TestOpenDatabaseBadDirIntegration(t *testing.T) {
	t.Setenv("DATABASE_DIR", "/nonexistent/impossible/path")

	if _, err := openDatabase(context.Background()); err == nil {
		t.Error("Expected error for an unwritable database directory")
	}
}

func TestSanitizeCommand(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"valid command", "reset", "reset"},
		{"mixed case with digits", "My_Command-v2", "My_Command-v2"},
		{"shell injection attempt", "reset; rm -rf /", "reset__rm_-rf__"},
		{"ANSI escape sequence", "\x1b[31mred\x1b[0m", "__31mred__0m"},
		{"unicode replaced", "café", "caf_"},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeCommand(tt.input)
			if got != tt.want {
				t.Errorf("sanitizeCommand(%q) = %q, want %q", tt.input, got, tt.want)
			}
			// A second pass must be a no-op.
			if again := sanitizeCommand(got); again != got {
				t.Errorf("sanitizeCommand not idempotent: %q -> %q", got, again)
			}
		})
	}
}
