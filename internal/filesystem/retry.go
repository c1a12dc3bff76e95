// Package filesystem wraps stat and open with retry handling for media
// libraries mounted over NFS, where a rebuilt export can leave the server
// holding stale file handles.
package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"filetree-search/internal/logging"
	"filetree-search/internal/metrics"
)

// VolumeResolver labels file paths with the mount they live on, so retry
// metrics can tell a flaky media export from a flaky cache disk. Longest
// configured prefix wins.
type VolumeResolver struct {
	mounts []volumeMount // sorted longest path first
}

type volumeMount struct {
	prefix string // absolute, trailing slash
	name   string
}

// NewVolumeResolver builds a resolver from volume name to mount path:
//
//	NewVolumeResolver(map[string]string{
//	    "media":    "/media",
//	    "cache":    "/cache",
//	    "database": "/database",
//	})
func NewVolumeResolver(volumes map[string]string) *VolumeResolver {
	vr := &VolumeResolver{mounts: make([]volumeMount, 0, len(volumes))}
	for name, path := range volumes {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if !strings.HasSuffix(path, "/") {
			path += "/"
		}
		vr.mounts = append(vr.mounts, volumeMount{prefix: path, name: name})
	}
	sort.Slice(vr.mounts, func(i, j int) bool {
		return len(vr.mounts[i].prefix) > len(vr.mounts[j].prefix)
	})
	return vr
}

// Resolve returns the volume name for path, or "unknown". The mount root
// itself counts as inside the volume; "/mediafiles" does not match "/media".
func (vr *VolumeResolver) Resolve(path string) string {
	if vr == nil {
		return "unknown"
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "unknown"
	}
	for _, m := range vr.mounts {
		if strings.HasPrefix(abs, m.prefix) || abs+"/" == m.prefix {
			return m.name
		}
	}
	return "unknown"
}

var defaultResolver *VolumeResolver

// SetDefaultVolumeResolver installs the package-level resolver. Called once
// at startup after configuration resolves the mount paths.
func SetDefaultVolumeResolver(vr *VolumeResolver) {
	defaultResolver = vr
}

// RetryConfig bounds the retry loop for one operation.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// VolumeResolver overrides the package default when set.
	VolumeResolver *VolumeResolver
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
	}
}

func (c *RetryConfig) resolveVolume(path string) string {
	if c.VolumeResolver != nil {
		return c.VolumeResolver.Resolve(path)
	}
	return defaultResolver.Resolve(path)
}

// isNFSStaleError reports whether err is ESTALE, however deeply wrapped.
// Anything else, including ENOENT, is not retryable here.
func isNFSStaleError(err error) bool {
	var errno syscall.Errno
	return errors.As(err, &errno) && errno == syscall.ESTALE
}

// withRetry runs op up to MaxRetries+1 times with doubling backoff,
// retrying only stale NFS handles. Other errors return on the first try.
func withRetry(opName, path string, config RetryConfig, op func() error) error {
	start := time.Now()
	volume := config.resolveVolume(path)
	defer func() {
		metrics.FilesystemRetryDuration.WithLabelValues(opName, volume).Observe(time.Since(start).Seconds())
	}()

	backoff := config.InitialBackoff
	var err error
	for attempt := 0; ; attempt++ {
		err = op()
		switch {
		case err == nil:
			if attempt > 0 {
				logging.Info("NFS %s succeeded on retry %d for %s", opName, attempt, path)
				metrics.FilesystemRetrySuccess.WithLabelValues(opName, volume).Inc()
			}
			return nil
		case !isNFSStaleError(err):
			return err
		}

		metrics.FilesystemStaleErrors.WithLabelValues(opName, volume).Inc()
		if attempt == config.MaxRetries {
			break
		}

		metrics.FilesystemRetryAttempts.WithLabelValues(opName, volume).Inc()
		logging.Debug("NFS %s stale file handle for %s, retrying in %v (attempt %d/%d)",
			opName, path, backoff, attempt+1, config.MaxRetries)
		time.Sleep(backoff)
		if backoff *= 2; backoff > config.MaxBackoff {
			backoff = config.MaxBackoff
		}
	}

	logging.Warn("NFS %s failed after %d retries for %s: %v", opName, config.MaxRetries, path, err)
	metrics.FilesystemRetryFailures.WithLabelValues(opName, volume).Inc()
	return err
}

// StatWithRetry is os.Stat behind the stale-handle retry loop.
func StatWithRetry(path string, config RetryConfig) (os.FileInfo, error) {
	var info os.FileInfo
	err := withRetry("stat", path, config, func() error {
		var statErr error
		info, statErr = os.Stat(path)
		return statErr
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// OpenWithRetry is os.Open behind the stale-handle retry loop.
func OpenWithRetry(path string, config RetryConfig) (*os.File, error) {
	var file *os.File
	err := withRetry("open", path, config, func() error {
		var openErr error
		file, openErr = os.Open(path)
		return openErr
	})
	if err != nil {
		return nil, err
	}
	return file, nil
}
