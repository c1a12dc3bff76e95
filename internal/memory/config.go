package memory

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"

	"filetree-search/internal/logging"
)

// DefaultMemoryRatio is the share of the container memory limit handed to
// the Go heap. The rest covers thumbnail decoding, CGO allocations from
// sqlite, and goroutine stacks.
const DefaultMemoryRatio = 0.85

// ConfigResult records how GOMEMLIMIT ended up configured, for the startup
// banner.
type ConfigResult struct {
	// Configured is true when a limit was applied.
	Configured bool

	// Source is "GOMEMLIMIT", "MEMORY_LIMIT", or "none".
	Source string

	// ContainerLimit is the container memory limit in bytes, when known.
	ContainerLimit int64

	// GoMemLimit is the effective GOMEMLIMIT in bytes.
	GoMemLimit int64

	// Ratio is the fraction of the container limit given to the heap.
	Ratio float64
}

// ConfigureFromEnv derives GOMEMLIMIT from the container memory limit.
// Call it early in main, before anything allocates seriously.
//
// An explicit GOMEMLIMIT wins. Otherwise MEMORY_LIMIT (bytes, typically
// injected via the Kubernetes Downward API) scaled by MEMORY_RATIO is
// applied.
func ConfigureFromEnv() ConfigResult {
	if env := os.Getenv("GOMEMLIMIT"); env != "" {
		result := ConfigResult{Source: "GOMEMLIMIT"}
		if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
			result.Configured = true
			result.GoMemLimit = limit
		}
		logging.Info("GOMEMLIMIT set via environment: %s", env)
		return result
	}

	env := os.Getenv("MEMORY_LIMIT")
	if env == "" {
		logging.Debug("MEMORY_LIMIT not set, GOMEMLIMIT will not be configured automatically")
		return ConfigResult{Source: "none"}
	}
	containerLimit, err := strconv.ParseInt(env, 10, 64)
	if err != nil {
		logging.Warn("Failed to parse MEMORY_LIMIT %q: %v", env, err)
		return ConfigResult{Source: "none"}
	}

	ratio := ratioFromEnv()
	goLimit := int64(float64(containerLimit) * ratio)
	debug.SetMemoryLimit(goLimit)

	logging.Info("Configured GOMEMLIMIT: %s (%.1f%% of %s container limit)",
		formatBytes(goLimit), ratio*100, formatBytes(containerLimit))

	return ConfigResult{
		Configured:     true,
		Source:         "MEMORY_LIMIT",
		ContainerLimit: containerLimit,
		GoMemLimit:     goLimit,
		Ratio:          ratio,
	}
}

func ratioFromEnv() float64 {
	env := os.Getenv("MEMORY_RATIO")
	if env == "" {
		return DefaultMemoryRatio
	}
	ratio, err := strconv.ParseFloat(env, 64)
	if err != nil {
		logging.Warn("Failed to parse MEMORY_RATIO %q: %v, using default %.2f", env, err, DefaultMemoryRatio)
		return DefaultMemoryRatio
	}
	if ratio <= 0 || ratio > 1.0 {
		logging.Warn("MEMORY_RATIO %q out of range (0.0-1.0), using default %.2f", env, DefaultMemoryRatio)
		return DefaultMemoryRatio
	}
	return ratio
}

// formatBytes renders a byte count as an IEC string ("1.5 GiB").
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
