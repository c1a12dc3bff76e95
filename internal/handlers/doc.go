// Package handlers implements the HTTP API.
//
// Endpoints fall into five groups: tree browsing and search (/api/tree,
// /api/search), playlist export (/api/export), library management
// (/api/scan, /api/rebuild, /api/stats, /api/artwork), authentication
// (/api/auth/*), and operational probes (/health, /livez, /readyz,
// /version). All responses are JSON except playlist downloads and
// artwork thumbnails.
package handlers
