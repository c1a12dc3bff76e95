package middleware

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

// responseWriter captures the status code and byte count of a response.
type responseWriter struct {
	http.ResponseWriter
	status      int
	bytes       int64
	wroteHeader bool
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.status = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += int64(n)
	return n, err
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// LoggingConfig controls which requests the access log records.
type LoggingConfig struct {
	SkipPaths       []string
	SkipExtensions  []string
	LogStaticFiles  bool
	LogHealthChecks bool
}

// DefaultLoggingConfig skips static assets and keeps health checks.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipExtensions:  []string{".css", ".js", ".ico", ".png", ".jpg", ".jpeg", ".gif", ".svg", ".woff", ".woff2", ".ttf"},
		LogStaticFiles:  false,
		LogHealthChecks: true,
	}
}

var probePaths = map[string]bool{
	"/health":  true,
	"/healthz": true,
	"/livez":   true,
	"/readyz":  true,
}

// Logger returns access-log middleware writing W3C Extended Log Format
// lines.
func Logger(config LoggingConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipAccessLog(r.URL.Path, config) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			wrapped := wrapResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			log.Println(accessLogLine(r, wrapped, time.Since(start)))
		})
	}
}

func skipAccessLog(path string, config LoggingConfig) bool {
	for _, prefix := range config.SkipPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	if !config.LogHealthChecks && probePaths[path] {
		return true
	}
	if !config.LogStaticFiles {
		for _, ext := range config.SkipExtensions {
			if strings.HasSuffix(strings.ToLower(path), ext) {
				return true
			}
		}
	}
	return false
}

// accessLogLine formats one request as
// date time c-ip cs-method cs-uri-stem cs-uri-query sc-status sc-bytes
// time-taken cs(Content-Encoding) cs(User-Agent) cs(Referer).
// All request-controlled fields pass through scrubField first, so a crafted
// header cannot forge extra log lines or emit terminal escapes.
func accessLogLine(r *http.Request, rw *responseWriter, duration time.Duration) string {
	now := time.Now().UTC()

	query := scrubField(r.URL.RawQuery)
	encoding := rw.Header().Get("Content-Encoding")
	agent := scrubField(r.Header.Get("User-Agent"))
	if agent != "" {
		agent = quoteField(agent)
	}
	referer := scrubField(r.Header.Get("Referer"))

	return fmt.Sprintf("%s %s %s %s %s %s %d %d %d %s %s %s",
		now.Format("2006-01-02"),
		now.Format("15:04:05"),
		scrubField(clientIP(r)),
		scrubField(r.Method),
		scrubField(r.URL.Path),
		orDash(query),
		rw.status,
		rw.bytes,
		duration.Milliseconds(),
		orDash(encoding),
		orDash(agent),
		orDash(referer),
	)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// scrubField drops control characters that could forge log lines: newlines
// and carriage returns become spaces, ANSI escapes and other controls are
// removed, tabs stay.
func scrubField(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r':
			b.WriteRune(' ')
		case r < 0x20 && r != '\t':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// quoteField wraps a value containing spaces or quotes for the W3C format.
func quoteField(s string) string {
	if !strings.ContainsAny(s, " \t\"") {
		return s
	}
	return "\"" + strings.ReplaceAll(s, "\"", "\"\"") + "\""
}

// clientIP prefers proxy headers over the socket address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.Index(xff, ","); i != -1 {
			xff = xff[:i]
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	addr := r.RemoteAddr
	if i := strings.LastIndex(addr, ":"); i != -1 {
		addr = addr[:i]
	}
	return addr
}
