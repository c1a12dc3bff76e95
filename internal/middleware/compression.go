package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

// CompressionConfig controls when responses are gzipped.
type CompressionConfig struct {
	// MinSize is the smallest body, in bytes, worth compressing.
	MinSize int

	// CompressibleTypes lists the content types to compress.
	CompressibleTypes []string
}

// DefaultCompressionConfig compresses text and JSON bodies of 1 KiB and up.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize: 1024,
		CompressibleTypes: []string{
			"text/html",
			"text/css",
			"text/plain",
			"text/javascript",
			"text/xml",
			"application/json",
			"application/javascript",
			"application/xml",
			"application/xhtml+xml",
			"application/rss+xml",
			"application/atom+xml",
			"image/svg+xml",
		},
	}
}

var gzipPool = sync.Pool{
	New: func() interface{} {
		w, _ := gzip.NewWriterLevel(io.Discard, gzip.DefaultCompression)
		return w
	},
}

// compressWriter buffers a response until enough bytes arrive to decide
// whether gzipping pays off, then streams the rest through that choice.
type compressWriter struct {
	http.ResponseWriter
	config    CompressionConfig
	gz        *gzip.Writer
	buf       []byte
	status    int
	committed bool
}

func newCompressWriter(w http.ResponseWriter, config CompressionConfig) *compressWriter {
	return &compressWriter{
		ResponseWriter: w,
		config:         config,
		status:         http.StatusOK,
		buf:            make([]byte, 0, config.MinSize+1),
	}
}

// WriteHeader only records the code; the real header write happens at
// commit time, once the compression decision is made.
func (cw *compressWriter) WriteHeader(status int) {
	if !cw.committed {
		cw.status = status
	}
}

func (cw *compressWriter) Write(data []byte) (int, error) {
	if cw.committed {
		if cw.gz != nil {
			return cw.gz.Write(data)
		}
		return cw.ResponseWriter.Write(data)
	}

	cw.buf = append(cw.buf, data...)
	if len(cw.buf) > cw.config.MinSize {
		cw.commit()
	}
	return len(data), nil
}

// commit decides for or against gzip and flushes the buffered bytes.
func (cw *compressWriter) commit() {
	if cw.committed {
		return
	}
	cw.committed = true

	if len(cw.buf) >= cw.config.MinSize && cw.compressible() {
		cw.Header().Del("Content-Length")
		cw.Header().Set("Content-Encoding", "gzip")
		cw.Header().Add("Vary", "Accept-Encoding")

		cw.gz = gzipPool.Get().(*gzip.Writer)
		cw.gz.Reset(cw.ResponseWriter)
		cw.ResponseWriter.WriteHeader(cw.status)
		cw.gz.Write(cw.buf)
	} else {
		cw.ResponseWriter.WriteHeader(cw.status)
		cw.ResponseWriter.Write(cw.buf)
	}
	cw.buf = nil
}

func (cw *compressWriter) compressible() bool {
	contentType := cw.Header().Get("Content-Type")
	if contentType == "" {
		return false
	}
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	for _, t := range cw.config.CompressibleTypes {
		if mediaType == t {
			return true
		}
	}
	return false
}

// Close flushes anything still buffered and returns the gzip writer to the
// pool.
func (cw *compressWriter) Close() error {
	cw.commit()
	if cw.gz == nil {
		return nil
	}
	err := cw.gz.Close()
	gzipPool.Put(cw.gz)
	cw.gz = nil
	return err
}

func (cw *compressWriter) Flush() {
	cw.commit()
	if cw.gz != nil {
		cw.gz.Flush()
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Push implements http.Pusher for HTTP/2.
func (cw *compressWriter) Push(target string, opts *http.PushOptions) error {
	if p, ok := cw.ResponseWriter.(http.Pusher); ok {
		return p.Push(target, opts)
	}
	return http.ErrNotSupported
}

// Compression returns middleware that gzips compressible responses for
// clients that accept it. Upgraded connections and event streams pass
// through untouched.
func Compression(config CompressionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") ||
				r.Header.Get("Upgrade") != "" ||
				r.Header.Get("Accept") == "text/event-stream" {
				next.ServeHTTP(w, r)
				return
			}

			cw := newCompressWriter(w, config)
			defer cw.Close()
			next.ServeHTTP(cw, r)
		})
	}
}
