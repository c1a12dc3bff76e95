package memory

import (
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"filetree-search/internal/logging"
	"filetree-search/internal/metrics"
)

// Config tunes the monitor's sampling and water marks.
type Config struct {
	// MemoryLimitBytes is the soft heap limit. Zero means take GOMEMLIMIT,
	// and if that is unset too, backpressure stays off.
	MemoryLimitBytes int64

	// HighWaterMark is the fraction of the limit below which a paused
	// monitor resumes.
	HighWaterMark float64

	// CriticalWaterMark is the fraction of the limit at which processing
	// pauses.
	CriticalWaterMark float64

	// CheckInterval is the sampling period.
	CheckInterval time.Duration
}

// DefaultConfig returns the water marks the scanner runs with in production.
func DefaultConfig() Config {
	return Config{
		MemoryLimitBytes:  0,
		HighWaterMark:     0.7,
		CriticalWaterMark: 0.85,
		CheckInterval:     5 * time.Second,
	}
}

// Monitor samples heap usage on a timer and pauses bulk work, mainly tag
// reading during scans, while usage sits above the critical water mark.
// Workers gate themselves through WaitIfPaused.
type Monitor struct {
	config Config
	limit  int64
	stop   chan struct{}

	mu     sync.RWMutex
	alloc  uint64
	paused bool
	resume chan struct{}
}

// NewMonitor creates a Monitor. With no explicit limit it inherits
// GOMEMLIMIT; with neither set the monitor is inert.
func NewMonitor(config Config) *Monitor {
	limit := config.MemoryLimitBytes
	if limit == 0 {
		if gml := debug.SetMemoryLimit(-1); gml > 0 && gml < 1<<62 {
			limit = gml
			logging.Info("Memory monitor using GOMEMLIMIT: %d bytes (%.1f MB)", limit, float64(limit)/(1024*1024))
		}
	}
	if limit == 0 {
		logging.Warn("Memory monitor: no memory limit configured, backpressure disabled")
	}

	return &Monitor{
		config: config,
		limit:  limit,
		stop:   make(chan struct{}),
		resume: make(chan struct{}),
	}
}

// Start begins sampling. A monitor without a limit does nothing.
func (m *Monitor) Start() {
	if m.limit == 0 {
		return
	}
	go m.loop()
}

// Stop shuts the monitor down and releases every waiter with a false
// result.
func (m *Monitor) Stop() {
	close(m.stop)
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sample()
		case <-m.stop:
			return
		}
	}
}

func (m *Monitor) sample() {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.alloc = stats.Alloc
	usage := float64(stats.Alloc) / float64(m.limit)
	metrics.MemoryUsageRatio.Set(usage)

	switch {
	case usage >= m.config.CriticalWaterMark && !m.paused:
		logging.Warn("Memory critical (%.1f%% of limit), pausing processing", usage*100)
		m.paused = true
		metrics.MemoryPaused.Set(1)
		metrics.MemoryGCPauses.Inc()
		go runtime.GC()
	case usage < m.config.HighWaterMark && m.paused:
		logging.Info("Memory recovered (%.1f%% of limit), resuming processing", usage*100)
		m.paused = false
		metrics.MemoryPaused.Set(0)
		close(m.resume)
		m.resume = make(chan struct{})
	}
}

// WaitIfPaused blocks while the monitor is paused. It reports true once
// work may proceed and false if the monitor was stopped while waiting.
func (m *Monitor) WaitIfPaused() bool {
	m.mu.RLock()
	if !m.paused {
		m.mu.RUnlock()
		return true
	}
	resume := m.resume
	m.mu.RUnlock()

	select {
	case <-resume:
		return true
	case <-m.stop:
		return false
	}
}

// IsPaused reports whether work is currently gated.
func (m *Monitor) IsPaused() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paused
}

// Usage returns the last sampled heap usage as a fraction of the limit,
// zero when no limit is configured.
func (m *Monitor) Usage() float64 {
	if m.limit == 0 {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return float64(m.alloc) / float64(m.limit)
}
