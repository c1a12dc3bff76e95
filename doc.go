// Command filetree-search is the entry point for the filetree search
// application.
//
// Filetree Search is a self-hosted web application for browsing a music
// library as a hierarchical tree, filtering it with substring search, and
// exporting selections as playlists.
//
// # Application Lifecycle
//
// The application follows a structured initialization sequence:
//
//  1. Memory Configuration: Sets GOMEMLIMIT from environment or cgroup limits
//  2. Configuration Loading: Reads environment variables and validates directories
//  3. Database Initialization: Opens the SQLite track store
//  4. Component Initialization:
//     - Memory Monitor: Tracks system memory usage
//     - Scanner: Walks the media directory and extracts track metadata
//     - Artwork Cache: Generates and caches album art thumbnails (if enabled)
//     - Indexer: Builds the searchable tree from stored tracks
//     - Metrics Collector: Gathers Prometheus metrics
//  5. HTTP Server Setup: Configures routes, middleware, and starts the server
//  6. Graceful Shutdown: Handles SIGINT/SIGTERM, stops all components cleanly
//
// # Background Services
//
// Several goroutines run throughout the application lifecycle:
//
//   - Indexer: Periodically rebuilds the tree and polls for completed scans
//   - Metrics Collector: Updates Prometheus metrics on an interval
//   - Session Cleanup: Removes expired authentication sessions
//
// # Memory Management
//
// GOMEMLIMIT is configured from the container's cgroup limit when one is
// present, and a memory monitor pauses scanner workers under memory
// pressure.
package main
