package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"filetree-search/internal/database"

	"golang.org/x/term"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultDatabaseDir = "/database"
	minPasswordLength  = 6
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	os.Exit(run(os.Args[1]))
}

func run(command string) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	db, err := openDatabase(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}()

	switch command {
	case "reset":
		if !resetPassword(ctx, db) {
			return 1
		}
	case "status":
		showStatus(ctx, db)
	default:
		// The command came straight from argv; run it through the
		// allowlist before echoing it back to the terminal.
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", sanitizeCommand(command)) //nolint:gosec // G705 - only [a-zA-Z0-9_-] survives sanitizeCommand
		printUsage()
		return 1
	}
	return 0
}

func openDatabase(ctx context.Context) (*database.Database, error) {
	databaseDir := os.Getenv("DATABASE_DIR")
	if databaseDir == "" {
		databaseDir = defaultDatabaseDir
	}

	db, err := database.New(ctx, filepath.Join(databaseDir, "library.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database under %s (check DATABASE_DIR): %w", databaseDir, err)
	}
	return db, nil
}

// sanitizeCommand maps every character outside [a-zA-Z0-9_-] to '_' so an
// attacker-chosen command name cannot smuggle escapes into the terminal.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func printUsage() {
	fmt.Println("Filetree Search Password Management")
	fmt.Println("")
	fmt.Println("Usage: resetpw <command>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  reset   - Reset the password")
	fmt.Println("  status  - Check if password is configured")
	fmt.Println("")
	fmt.Println("Environment:")
	fmt.Printf("  DATABASE_DIR - Path to database directory (default: %s)\n", defaultDatabaseDir)
}

func promptPassword(prompt string) ([]byte, error) {
	fmt.Print(prompt)
	password, err := term.ReadPassword(syscall.Stdin)
	fmt.Println()
	return password, err
}

func resetPassword(ctx context.Context, db *database.Database) bool {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	// Initial setup happens through the web interface; this tool only
	// replaces an existing password.
	if !db.HasUsers(ctx) {
		fmt.Fprintln(os.Stderr, "Error: No password configured yet. Use the web interface to set up.")
		return false
	}

	password, err := promptPassword("New Password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading password: %v\n", err)
		return false
	}
	confirm, err := promptPassword("Confirm Password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading password: %v\n", err)
		return false
	}

	if !bytes.Equal(password, confirm) {
		fmt.Fprintln(os.Stderr, "Error: Passwords do not match")
		return false
	}
	if len(password) < minPasswordLength {
		fmt.Fprintf(os.Stderr, "Error: Password must be at least %d characters\n", minPasswordLength)
		return false
	}

	if err := db.UpdatePassword(ctx, string(password)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to update password: %v\n", err)
		return false
	}

	fmt.Println("Password updated successfully.")
	fmt.Println("All existing sessions have been invalidated.")
	return true
}

func showStatus(ctx context.Context, db *database.Database) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if db.HasUsers(ctx) {
		fmt.Println("Status: Password is configured")
	} else {
		fmt.Println("Status: No password configured (setup required)")
	}
}
