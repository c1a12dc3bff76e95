package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSkipAccessLog(t *testing.T) {
	config := DefaultLoggingConfig()
	config.SkipPaths = []string{"/internal"}

	tests := []struct {
		path string
		skip bool
	}{
		{"/api/search", false},
		{"/internal/debug", true},
		{"/health", false}, // health logging is on by default
		{"/static/app.js", true},
		{"/static/logo.SVG", true},
		{"/api/artwork/42", false},
	}
	for _, tt := range tests {
		if got := skipAccessLog(tt.path, config); got != tt.skip {
			t.Errorf("skipAccessLog(%q) = %v, want %v", tt.path, got, tt.skip)
		}
	}

	config.LogHealthChecks = false
	if !skipAccessLog("/readyz", config) {
		t.Error("Probe paths should be skipped with health logging off")
	}
	config.LogStaticFiles = true
	if skipAccessLog("/static/app.js", config) {
		t.Error("Static files should be logged when enabled")
	}
}

func TestScrubField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"line\nforged", "line forged"},
		{"cr\rhere", "cr here"},
		{"esc\x1b[31mred", "esc[31mred"},
		{"null\x00byte", "nullbyte"},
		{"tab\tkept", "tab\tkept"},
	}
	for _, tt := range tests {
		if got := scrubField(tt.in); got != tt.want {
			t.Errorf("scrubField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQuoteField(t *testing.T) {
	if got := quoteField("curl/8.0"); got != "curl/8.0" {
		t.Errorf("quoteField without spaces = %q", got)
	}
	if got := quoteField(`Mozilla/5.0 ("X11")`); got != `"Mozilla/5.0 (""X11"")"` {
		t.Errorf("quoteField with spaces and quotes = %q", got)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.9:5432"
	if got := clientIP(req); got != "10.0.0.9" {
		t.Errorf("clientIP from RemoteAddr = %q", got)
	}

	req.Header.Set("X-Real-IP", "192.168.1.5")
	if got := clientIP(req); got != "192.168.1.5" {
		t.Errorf("clientIP from X-Real-IP = %q", got)
	}

	// The first hop of X-Forwarded-For wins over everything.
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := clientIP(req); got != "203.0.113.7" {
		t.Errorf("clientIP from X-Forwarded-For = %q", got)
	}
}

func TestLoggerPassesThrough(t *testing.T) {
	handler := Logger(DefaultLoggingConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/tree", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("Status = %d, want 418", rec.Code)
	}
	if rec.Body.String() != "short and stout" {
		t.Errorf("Body = %q", rec.Body.String())
	}
}

func compressedRequest(t *testing.T, handler http.Handler, acceptGzip bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", "/api/tree", nil)
	if acceptGzip {
		req.Header.Set("Accept-Encoding", "gzip")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCompressionLargeJSON(t *testing.T) {
	body := strings.Repeat(`{"name":"Queen","category":2},`, 200)
	handler := Compression(DefaultCompressionConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))

	rec := compressedRequest(t, handler, true)
	if got := rec.Header().Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", got)
	}

	zr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	decoded, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if string(decoded) != body {
		t.Error("Decompressed body does not round-trip")
	}
}

func TestCompressionSkipsSmallBody(t *testing.T) {
	handler := Compression(DefaultCompressionConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))

	rec := compressedRequest(t, handler, true)
	if rec.Header().Get("Content-Encoding") == "gzip" {
		t.Error("Small bodies should not be compressed")
	}
	if rec.Body.String() != `{"ok":true}` {
		t.Errorf("Body = %q", rec.Body.String())
	}
}

func TestCompressionSkipsBinaryTypes(t *testing.T) {
	big := make([]byte, 4096)
	handler := Compression(DefaultCompressionConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(big)
	}))

	rec := compressedRequest(t, handler, true)
	if rec.Header().Get("Content-Encoding") == "gzip" {
		t.Error("image/jpeg must not be compressed")
	}
	if rec.Body.Len() != len(big) {
		t.Errorf("Body length = %d, want %d", rec.Body.Len(), len(big))
	}
}

func TestCompressionRequiresAcceptEncoding(t *testing.T) {
	body := strings.Repeat("text ", 1000)
	handler := Compression(DefaultCompressionConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(body))
	}))

	rec := compressedRequest(t, handler, false)
	if rec.Header().Get("Content-Encoding") == "gzip" {
		t.Error("Responses must stay identity without Accept-Encoding: gzip")
	}
}

func TestCompressionManySmallWrites(t *testing.T) {
	handler := Compression(DefaultCompressionConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		for i := 0; i < 300; i++ {
			w.Write([]byte("chunk of text "))
		}
	}))

	rec := compressedRequest(t, handler, true)
	if got := rec.Header().Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", got)
	}
	zr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	decoded, _ := io.ReadAll(zr)
	if len(decoded) != 300*len("chunk of text ") {
		t.Errorf("Decompressed length = %d", len(decoded))
	}
}

func TestCompressionStatusPreserved(t *testing.T) {
	handler := Compression(DefaultCompressionConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"node not found"}`))
	}))

	rec := compressedRequest(t, handler, true)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", rec.Code)
	}
}

func TestMetricsSkipPaths(t *testing.T) {
	var served bool
	handler := Metrics(DefaultMetricsConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		served = true
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/metrics", "/healthz", "/api/tree"} {
		served = false
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		if !served {
			t.Errorf("Handler not reached for %s", path)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("Status for %s = %d", path, rec.Code)
		}
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/", "/"},
		{"/api/tree", "/api/tree"},
		{"/api/artwork/7", "/api/artwork/7"},
		{"/api/tree/42/children", "/api/tree/42/{path}"},
		{"/api/tree/42/children/deep", "/api/tree/42/{path}"},
	}
	for _, tt := range tests {
		if got := normalizePath(tt.in); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
