package startup

import (
	"strconv"

	"filetree-search/internal/logging"
)

// MemoryConfig describes the GOMEMLIMIT configuration applied at startup.
// It mirrors memory.ConfigResult so callers can log without importing the
// memory package here.
type MemoryConfig struct {
	Configured     bool
	Source         string
	ContainerLimit int64
	GoMemLimit     int64
	Ratio          float64
}

// LogMemoryConfig logs the memory configuration section of the startup
// banner.
func LogMemoryConfig(mc MemoryConfig) {
	logging.Info("------------------------------------------------------------")
	logging.Info("MEMORY CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	if !mc.Configured {
		logging.Info("  GOMEMLIMIT:      not configured")
		logging.Info("  (set MEMORY_LIMIT or GOMEMLIMIT to enable)")
		logging.Info("")
		return
	}

	switch mc.Source {
	case "GOMEMLIMIT":
		logging.Info("  GOMEMLIMIT:      %s (from environment)", formatBytesStartup(mc.GoMemLimit))
	case "MEMORY_LIMIT":
		logging.Info("  Container limit: %s", formatBytesStartup(mc.ContainerLimit))
		logging.Info("  GOMEMLIMIT:      %s (%.0f%% of container limit)",
			formatBytesStartup(mc.GoMemLimit), mc.Ratio*100)
	default:
		logging.Info("  GOMEMLIMIT:      %s", formatBytesStartup(mc.GoMemLimit))
	}
	logging.Info("")
}

// formatBytesStartup formats a byte count as a human-readable IEC string.
func formatBytesStartup(b int64) string {
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
