package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"filetree-search/internal/database"
	"filetree-search/internal/logging"
	"filetree-search/internal/metrics"
)

// LoginRequest carries the password for login; there is no username.
type LoginRequest struct {
	Password string `json:"password"`
}

// SetupRequest sets the initial password.
type SetupRequest struct {
	Password string `json:"password"`
}

// PasswordChangeRequest rotates the password.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// AuthResponse is the common shape returned by the auth endpoints.
type AuthResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	ExpiresIn int    `json:"expiresIn,omitempty"` // seconds until the session expires
}

// SessionCookieName holds the session token on the client.
const SessionCookieName = "filetree_search_session"

// sessionToken pulls the session token from the request cookie, empty when
// absent.
func sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// checkPasswordPolicy validates length bounds. The 72-byte ceiling is
// bcrypt's input limit.
func checkPasswordPolicy(password, label string) (string, bool) {
	if len(password) < 6 {
		return label + " must be at least 6 characters", false
	}
	if len(password) > 72 {
		return label + " must not exceed 72 characters", false
	}
	return "", true
}

func setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	setSessionCookie(w, "", time.Unix(0, 0))
}

func refreshSessionCookie(w http.ResponseWriter, token string) {
	setSessionCookie(w, token, time.Now().Add(database.GetSessionDuration()))
}

// CheckSetupRequired tells the frontend whether to show the setup screen.
func (h *Handlers) CheckSetupRequired(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]bool{
		"needsSetup": !h.db.HasUsers(r.Context()),
	})
}

// Setup creates the initial password. Refused once a user exists.
func (h *Handlers) Setup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.db.HasUsers(ctx) {
		http.Error(w, "Setup already completed", http.StatusForbidden)
		return
	}

	var req SetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if msg, ok := checkPasswordPolicy(req.Password, "Password"); !ok {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	if err := h.db.CreateUser(ctx, req.Password); err != nil {
		logging.Error("Failed to create user: %v", err)
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	logging.Info("Initial password configured")
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, AuthResponse{Success: true, Message: "Password configured successfully"})
}

// Login exchanges the password for a session cookie.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.db.ValidatePassword(ctx, req.Password)
	if err != nil {
		logging.Warn("Failed login attempt")
		metrics.AuthAttemptsTotal.WithLabelValues("failure").Inc()
		http.Error(w, "Invalid password", http.StatusUnauthorized)
		return
	}
	metrics.AuthAttemptsTotal.WithLabelValues("success").Inc()

	session, err := h.db.CreateSession(ctx, user.ID)
	if err != nil {
		logging.Error("Failed to create session: %v", err)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	metrics.ActiveSessions.Inc()

	setSessionCookie(w, session.Token, session.ExpiresAt)
	logging.Info("User logged in, session expires in %v", database.GetSessionDuration())

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, AuthResponse{
		Success:   true,
		ExpiresIn: int(database.GetSessionDuration().Seconds()),
	})
}

// Logout ends the current session. Always succeeds, even with a dead token.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		if err := h.db.DeleteSession(r.Context(), token); err != nil {
			logging.Error("failed to delete session during logout: %v", err)
		} else {
			metrics.ActiveSessions.Dec()
		}
	}

	clearSessionCookie(w)
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, AuthResponse{Success: true, Message: "Logged out successfully"})
}

// CheckAuth verifies the current session.
func (h *Handlers) CheckAuth(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if _, err := h.db.ValidateSession(r.Context(), token); err != nil {
		clearSessionCookie(w)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, AuthResponse{
		Success:   true,
		ExpiresIn: int(database.GetSessionDuration().Seconds()),
	})
}

// ChangePassword rotates the password after re-checking the current one.
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req PasswordChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if _, err := h.db.ValidatePassword(ctx, req.CurrentPassword); err != nil {
		logging.Warn("Failed password change attempt - invalid current password")
		http.Error(w, "Current password is incorrect", http.StatusUnauthorized)
		return
	}
	if msg, ok := checkPasswordPolicy(req.NewPassword, "New password"); !ok {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	// Updating the password invalidates every session, including this one.
	if err := h.db.UpdatePassword(ctx, req.NewPassword); err != nil {
		logging.Error("Failed to update password: %v", err)
		http.Error(w, "Failed to update password", http.StatusInternalServerError)
		return
	}

	logging.Info("Password changed successfully")
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, AuthResponse{Success: true, Message: "Password updated successfully"})
}

// Keepalive extends the current session without returning user data.
func (h *Handlers) Keepalive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := sessionToken(r)
	if token == "" {
		http.Error(w, "No session", http.StatusUnauthorized)
		return
	}
	if _, err := h.db.ValidateSession(ctx, token); err != nil {
		http.Error(w, "Invalid session", http.StatusUnauthorized)
		return
	}
	if err := h.db.ExtendSession(ctx, token); err != nil {
		logging.Debug("Failed to extend session in keepalive: %v", err)
		http.Error(w, "Failed to extend session", http.StatusInternalServerError)
		return
	}

	refreshSessionCookie(w, token)
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"success":   true,
		"expiresIn": int(database.GetSessionDuration().Seconds()),
	})
}

// publicPath reports whether path is reachable without a session: the auth
// endpoints themselves, the health checks, and the version endpoint.
func publicPath(path string) bool {
	if strings.HasPrefix(path, "/api/auth/") {
		return true
	}
	switch path {
	case "/health", "/healthz", "/livez", "/readyz", "/version":
		return true
	}
	return false
}

// AuthMiddleware gates every route behind a valid session when auth is
// enabled, sliding the expiration forward on each authenticated request.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.authEnabled || publicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token := sessionToken(r)
		if token == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		if _, err := h.db.ValidateSession(ctx, token); err != nil {
			clearSessionCookie(w)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if err := h.db.ExtendSession(ctx, token); err != nil {
			logging.Debug("Failed to extend session: %v", err)
		} else {
			refreshSessionCookie(w, token)
		}

		next.ServeHTTP(w, r)
	})
}
