package metrics

import (
	"os"
	"time"

	"filetree-search/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current library statistics
type Stats struct {
	TotalTracks  int
	TotalArtists int
	TotalAlbums  int
	TotalGenres  int
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	dbPath        string
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, dbPath string, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		dbPath:        dbPath,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	LibraryTracksTotal.Set(float64(stats.TotalTracks))
	LibraryArtistsTotal.Set(float64(stats.TotalArtists))
	LibraryAlbumsTotal.Set(float64(stats.TotalAlbums))
	LibraryGenresTotal.Set(float64(stats.TotalGenres))

	c.collectDBSizes()

	logging.Debug("Metrics collected: tracks=%d, artists=%d, albums=%d, genres=%d",
		stats.TotalTracks, stats.TotalArtists, stats.TotalAlbums, stats.TotalGenres)
}

func (c *Collector) collectDBSizes() {
	if c.dbPath == "" {
		return
	}

	files := map[string]string{
		"main": c.dbPath,
		"wal":  c.dbPath + "-wal",
		"shm":  c.dbPath + "-shm",
	}

	for label, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			DBSizeBytes.WithLabelValues(label).Set(0)
			continue
		}
		DBSizeBytes.WithLabelValues(label).Set(float64(info.Size()))
	}
}
