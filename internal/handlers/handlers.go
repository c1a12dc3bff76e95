package handlers

import (
	"time"

	"filetree-search/internal/artwork"
	"filetree-search/internal/database"
	"filetree-search/internal/indexer"
	"filetree-search/internal/scanner"
	"filetree-search/internal/startup"
)

type Handlers struct {
	db          *database.Database
	indexer     *indexer.Indexer
	scanner     *scanner.Scanner
	artwork     *artwork.Cache
	authEnabled bool
	startTime   time.Time
}

// New wires the HTTP handlers to their backing components. The artwork
// cache may be nil when the cache directory is unavailable.
func New(db *database.Database, idx *indexer.Indexer, scan *scanner.Scanner, art *artwork.Cache, config *startup.Config) *Handlers {
	return &Handlers{
		db:          db,
		indexer:     idx,
		scanner:     scan,
		artwork:     art,
		authEnabled: config.AuthEnabled,
		startTime:   time.Now(),
	}
}
