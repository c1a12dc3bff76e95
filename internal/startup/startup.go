package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"filetree-search/internal/logging"

	"github.com/gorilla/mux"
)

// Injected via -ldflags at build time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo is the version block served by /api/version.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds the full application configuration, resolved from the
// environment by LoadConfig.
type Config struct {
	MediaDir        string
	CacheDir        string
	DatabaseDir     string
	Port            string
	MetricsPort     string
	IndexInterval   time.Duration
	PollInterval    time.Duration
	IndexMode       string
	AuthEnabled     bool
	LogStaticFiles  bool
	LogHealthChecks bool
	MetricsEnabled  bool

	DatabasePath string
	ArtworkDir   string

	// Artwork degrades to disabled when its cache dir is unusable.
	ArtworkEnabled bool
}

const divider = "------------------------------------------------------------"

// section prints a titled divider block in the startup banner.
func section(title string) {
	logging.Info("")
	logging.Info(divider)
	logging.Info(title)
	logging.Info(divider)
}

// LoadConfig reads configuration from the environment, validates the
// directories it names, and prints the startup banner along the way. The
// database directory must be writable; everything else degrades with a
// warning.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()
	section("CONFIGURATION")

	config := &Config{
		MediaDir:        getEnv("MEDIA_DIR", "/media"),
		CacheDir:        getEnv("CACHE_DIR", "/cache"),
		DatabaseDir:     getEnv("DATABASE_DIR", "/database"),
		Port:            getEnv("PORT", "8080"),
		MetricsPort:     getEnv("METRICS_PORT", "9090"),
		IndexInterval:   envDuration("INDEX_INTERVAL", 30*time.Minute),
		PollInterval:    envDuration("POLL_INTERVAL", 15*time.Second),
		IndexMode:       strings.ToLower(getEnv("INDEX_MODE", "tag")),
		AuthEnabled:     getEnvBool("AUTH_ENABLED", true),
		LogStaticFiles:  getEnvBool("LOG_STATIC_FILES", false),
		LogHealthChecks: getEnvBool("LOG_HEALTH_CHECKS", true),
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", true),
	}

	if config.IndexMode != "tag" && config.IndexMode != "path" {
		logging.Warn("  Invalid INDEX_MODE %q, using default: tag", config.IndexMode)
		config.IndexMode = "tag"
	}

	logging.Info("  MEDIA_DIR:           %s", config.MediaDir)
	logging.Info("  CACHE_DIR:           %s", config.CacheDir)
	logging.Info("  DATABASE_DIR:        %s", config.DatabaseDir)
	logging.Info("  PORT:                %s", config.Port)
	logging.Info("  METRICS_PORT:        %s", config.MetricsPort)
	logging.Info("  METRICS_ENABLED:     %v", config.MetricsEnabled)
	logging.Info("  INDEX_INTERVAL:      %s", config.IndexInterval)
	logging.Info("  POLL_INTERVAL:       %s", config.PollInterval)
	logging.Info("  INDEX_MODE:          %s", config.IndexMode)
	logging.Info("  AUTH_ENABLED:        %v", config.AuthEnabled)
	logging.Info("  LOG_STATIC_FILES:    %v", config.LogStaticFiles)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", config.LogHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())

	section("DIRECTORY SETUP")

	for _, dir := range []struct {
		target       *string
		label, title string
	}{
		{&config.MediaDir, "media", "Media"},
		{&config.CacheDir, "cache", "Cache"},
		{&config.DatabaseDir, "database", "Database"},
	} {
		abs, err := filepath.Abs(*dir.target)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s directory path: %w", dir.label, err)
		}
		*dir.target = abs
		logging.Info("  %s directory (absolute): %s", dir.title, abs)
	}
	config.DatabasePath = filepath.Join(config.DatabaseDir, "library.db")
	config.ArtworkDir = filepath.Join(config.CacheDir, "artwork")

	// A missing media dir is survivable; scans just come up empty.
	if err := ensureDirectory(config.MediaDir, "media"); err != nil {
		logging.Warn("  Media directory issue: %v", err)
	}

	if err := ensureDirectory(config.DatabaseDir, "database"); err != nil {
		return nil, fmt.Errorf("database directory error: %w", err)
	}
	logging.Debug("  Testing database directory write access...")
	if err := checkWritable(config.DatabaseDir); err != nil {
		return nil, fmt.Errorf("database directory is not writable (required for database): %w", err)
	}
	logging.Info("  [OK] Database directory is writable")

	config.ArtworkEnabled = setupOptionalDir(config.ArtworkDir, "artwork")

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Database:    ENABLED (required)")
	logging.Info("    Artwork:     %s", enabledString(config.ArtworkEnabled))
	logging.Info("    Auth:        %s", enabledString(config.AuthEnabled))
	logging.Info("    Metrics:     %s", enabledString(config.MetricsEnabled))

	return config, nil
}

// setupOptionalDir creates and write-tests a directory for an optional
// feature, returning whether the feature can be enabled.
func setupOptionalDir(path, name string) bool {
	logging.Debug("  Setting up %s directory: %s", name, path)

	if err := os.MkdirAll(path, 0o755); err != nil {
		logging.Warn("    Failed to create %s directory: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}
	if err := checkWritable(path); err != nil {
		logging.Warn("    %s directory is not writable: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}

	logging.Debug("    [OK] %s directory ready", name)
	return true
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

func LogDatabaseInit(duration time.Duration) {
	section("DATABASE INITIALIZATION")
	logging.Info("  [OK] Database initialized in %v", duration)
}

func LogScannerInit(mediaDir string) {
	section("SCANNER INITIALIZATION")
	logging.Info("  Media directory: %s", mediaDir)
}

func LogIndexerInit(mode string, interval, pollInterval time.Duration) {
	section("INDEXER INITIALIZATION")
	logging.Info("  Index mode:     %s", mode)
	logging.Info("  Index interval: %v", interval)
	logging.Info("  Scan poll:      %v", pollInterval)
	logging.Info("  Starting indexer...")
}

func LogIndexerStarted() {
	logging.Info("  [OK] Indexer started")
}

// RouteInfo describes one registered route, once per method.
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// GetRoutes flattens a mux.Router into RouteInfo entries. Routes without
// explicit methods (the static file server) report method "*".
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}
		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}
		for _, method := range methods {
			routes = append(routes, RouteInfo{Method: method, Path: pathTemplate, Name: route.GetName()})
		}
		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs the HTTP setup section; at debug level it also dumps
// the route table grouped by path prefix.
func LogHTTPRoutes(router *mux.Router, logStaticFiles, logHealthChecks bool) {
	section("HTTP SERVER SETUP")

	if logging.IsDebugEnabled() {
		logRouteTable(router)
	}

	logging.Info("  HTTP logging enabled")
	logToggle("Static file logging", logStaticFiles, "LOG_STATIC_FILES")
	logToggle("Health check logging", logHealthChecks, "LOG_HEALTH_CHECKS")
}

func logToggle(label string, on bool, envKey string) {
	if on {
		logging.Info("    %s: ON", label)
	} else {
		logging.Info("    %s: OFF (set %s=true to enable)", label, envKey)
	}
}

func logRouteTable(router *mux.Router) {
	routes, err := GetRoutes(router)
	if err != nil {
		logging.Warn("error walking routes: %v", err)
	}

	logging.Debug("  Registered routes (%d total):", len(routes))
	logging.Debug("")

	groups := make(map[string][]RouteInfo)
	for _, route := range routes {
		groups[routeGroup(route.Path)] = append(groups[routeGroup(route.Path)], route)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, group := range keys {
		if group == "" {
			group = "root"
		}
		logging.Debug("  [%s]", group)
		for _, route := range groups[group] {
			logging.Debug("    %-6s %s", route.Method, route.Path)
		}
		logging.Debug("")
	}
}

// routeGroup buckets a path by its first segment, splitting /api one level
// deeper so tree, search and auth routes group separately.
func routeGroup(path string) string {
	path = strings.TrimPrefix(path, "/")
	parts := strings.SplitN(path, "/", 3)
	if parts[0] == "api" && len(parts) > 1 {
		return "api/" + parts[1]
	}
	return parts[0]
}

// ServerConfig feeds the final SERVER STARTED banner.
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

func LogServerStarted(config ServerConfig) {
	section("SERVER STARTED")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Application:   http://0.0.0.0:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Local access:")
	logging.Info("    Application:   http://localhost:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://localhost:%s/metrics", config.MetricsPort)
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info(divider)
	logging.Info("")
}

func LogShutdownInitiated(signal string) {
	section(fmt.Sprintf("SHUTDOWN INITIATED (received %s)", signal))
}

func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

func printBanner() {
	banner := `
------------------------------------------------------------
    _____ __     __                  ____                  __
   / __(_) /__  / /________ ___     / __/__ ___ _________ / /
  / /_/ / / _ \/ __/ __/ -_) -_)   _\ \/ -_) _ '/ __/ __/ _ \
 /_/ /_/_/\___/\__/_/  \__/\__/   /___/\__/\_,_/_/  \__/_//_/

------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
}

func logSystemInfo() {
	section("SYSTEM INFORMATION")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))
	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	case err != nil:
		return fmt.Errorf("failed to stat directory: %w", err)
	case !info.IsDir():
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	if name == "media" && logging.IsDebugEnabled() {
		logMediaContents(path)
	}
	return nil
}

func logMediaContents(path string) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return
	}
	files, dirs := 0, 0
	for _, e := range entries {
		if e.IsDir() {
			dirs++
		} else {
			files++
		}
	}
	logging.Debug("    Contents: %d files, %d directories (top level)", files, dirs)
}

// checkWritable confirms write access by creating and removing a marker
// file. A leftover marker is logged but not fatal.
func checkWritable(dir string) error {
	marker := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(marker, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(marker); err != nil {
		logging.Warn("failed to remove write test file %s: %v", marker, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func envDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logging.Warn("  Invalid %s %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return d
}
