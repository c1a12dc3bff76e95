package database

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"filetree-search/internal/logging"
)

// User is the single account protecting the library. There is no username;
// the row exists once a password has been set.
type User struct {
	ID           int64     `json:"id"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Session is an authenticated login. Only the SHA-256 of the token is
// stored; the plaintext token goes to the client once and is never kept.
type Session struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionDuration is how long a session stays valid without renewal.
const SessionDuration = 7 * 24 * time.Hour

func GetSessionDuration() time.Duration {
	return SessionDuration
}

// hashToken maps a client-held hex token to its stored hash. An undecodable
// token can never match a row, so it is rejected here.
func hashToken(token string) (string, error) {
	raw, err := hex.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("invalid token format")
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// HasUsers reports whether a password has been configured.
func (d *Database) HasUsers(ctx context.Context) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var count int
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return false
	}
	return count > 0
}

// CreateUser stores the initial password.
func (d *Database) CreateUser(ctx context.Context, password string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("create_user", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err = d.db.ExecContext(ctx, "INSERT INTO users (password_hash) VALUES (?)", string(hash)); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// ValidatePassword returns the user when the password matches. Missing user
// and wrong password produce the same error so callers leak nothing.
func (d *Database) ValidatePassword(ctx context.Context, password string) (*User, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("validate_password", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var (
		user                 User
		createdAt, updatedAt int64
	)
	err = d.db.QueryRowContext(ctx,
		"SELECT id, password_hash, created_at, updated_at FROM users LIMIT 1",
	).Scan(&user.ID, &user.PasswordHash, &createdAt, &updatedAt)
	if err != nil {
		err = fmt.Errorf("invalid password")
		return nil, err
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		err = fmt.Errorf("invalid password")
		return nil, err
	}

	user.CreatedAt = time.Unix(createdAt, 0)
	user.UpdatedAt = time.Unix(updatedAt, 0)
	return &user, nil
}

// CreateSession issues a fresh session token for userID.
func (d *Database) CreateSession(ctx context.Context, userID int64) (*Session, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("create_session", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	raw := make([]byte, 32)
	if _, err = rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	token := hex.EncodeToString(raw)
	sum := sha256.Sum256(raw)
	tokenHash := hex.EncodeToString(sum[:])

	expiresAt := time.Now().Add(SessionDuration)
	result, err := d.db.ExecContext(ctx,
		"INSERT INTO sessions (user_id, token, expires_at) VALUES (?, ?, ?)",
		userID, tokenHash, expiresAt.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	id, _ := result.LastInsertId()
	return &Session{
		ID:        id,
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

// ValidateSession resolves a session token to its user, rejecting expired
// sessions. Expired rows are deleted in the background.
func (d *Database) ValidateSession(ctx context.Context, token string) (*User, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("validate_session", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tokenHash, err := hashToken(token)
	if err != nil {
		return nil, err
	}

	var userID, expiresAt int64
	err = d.db.QueryRowContext(ctx,
		"SELECT user_id, expires_at FROM sessions WHERE token = ?", tokenHash,
	).Scan(&userID, &expiresAt)
	if err != nil {
		err = fmt.Errorf("invalid session")
		return nil, err
	}

	if time.Now().Unix() > expiresAt {
		go func() {
			if delErr := d.deleteSessionByHash(tokenHash); delErr != nil {
				logging.Error("failed to delete expired session: %v", delErr)
			}
		}()
		err = fmt.Errorf("session expired")
		return nil, err
	}

	var (
		user                 User
		createdAt, updatedAt int64
	)
	err = d.db.QueryRowContext(ctx,
		"SELECT id, created_at, updated_at FROM users WHERE id = ?", userID,
	).Scan(&user.ID, &createdAt, &updatedAt)
	if err != nil {
		err = fmt.Errorf("user not found")
		return nil, err
	}

	user.CreatedAt = time.Unix(createdAt, 0)
	user.UpdatedAt = time.Unix(updatedAt, 0)
	return &user, nil
}

// ExtendSession pushes a session's expiry out by the full session duration
// (sliding expiration).
func (d *Database) ExtendSession(ctx context.Context, token string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tokenHash, err := hashToken(token)
	if err != nil {
		return err
	}

	_, err = d.db.ExecContext(ctx,
		"UPDATE sessions SET expires_at = ? WHERE token = ?",
		time.Now().Add(SessionDuration).Unix(), tokenHash,
	)
	return err
}

func (d *Database) deleteSessionByHash(tokenHash string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", tokenHash)
	return err
}

// DeleteSession logs a session out.
func (d *Database) DeleteSession(ctx context.Context, token string) error {
	tokenHash, err := hashToken(token)
	if err != nil {
		return err
	}
	return d.deleteSessionByHash(tokenHash)
}

// DeleteAllSessions logs everyone out; used when the password changes.
func (d *Database) DeleteAllSessions(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(ctx, "DELETE FROM sessions")
	return err
}

// CleanExpiredSessions sweeps expired rows; the janitor calls it on a timer.
func (d *Database) CleanExpiredSessions() error {
	start := time.Now()
	var err error
	defer func() { recordQuery("clean_expired_sessions", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < ?", time.Now().Unix())
	return err
}

// UpdatePassword replaces the password and invalidates every session.
func (d *Database) UpdatePassword(ctx context.Context, newPassword string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("update_password", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	result, err := d.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, updated_at = strftime('%s', 'now')", string(hash),
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		err = fmt.Errorf("no user found")
		return err
	}

	if _, delErr := d.db.ExecContext(ctx, "DELETE FROM sessions"); delErr != nil {
		logging.Warn("failed to invalidate sessions: %v", delErr)
	}
	return nil
}
