/*
Package startup loads configuration and owns the lifecycle banner.

[LoadConfig] resolves everything from environment variables:

	MEDIA_DIR          media directory, mounted read-only (default /media)
	CACHE_DIR          artwork thumbnail cache (default /cache)
	DATABASE_DIR       sqlite database directory, must be writable (default /database)
	PORT               HTTP server port (default 8080)
	METRICS_PORT       Prometheus metrics port (default 9090)
	METRICS_ENABLED    serve /metrics (default true)
	INDEX_INTERVAL     full re-index interval, Go duration (default 30m)
	POLL_INTERVAL      scan completion poll interval (default 15s)
	INDEX_MODE         tree construction mode, tag or path (default tag)
	AUTH_ENABLED       require a session for API access (default true)
	LOG_LEVEL          debug, info, warn or error (default info)
	LOG_STATIC_FILES   access-log static file requests (default false)
	LOG_HEALTH_CHECKS  access-log health probes (default true)
	MEMORY_LIMIT       container memory limit, drives GOMEMLIMIT
	MEMORY_RATIO       share of MEMORY_LIMIT given to the Go heap (default 0.85)

LoadConfig also validates the directories: the database directory is
created and write-tested (fatal on failure), the artwork cache degrades to
disabled, and a missing media directory is only a warning since scans of an
empty mount simply find nothing.

The Log* functions print the remaining sections of the startup and
shutdown banner, and [GetBuildInfo] exposes the ldflags-injected version
block that /api/version serves.
*/
package startup
