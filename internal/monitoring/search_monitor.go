package monitoring

import (
	"runtime"
	"sync"
	"time"

	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/events"
	"github.com/rs/zerolog"
)

// SearchMonitor aggregates decision statistics from the event bus and samples
// the goroutine count, which grows while root-parallel searches run.
type SearchMonitor struct {
	mu            sync.RWMutex
	id            string
	logger        zerolog.Logger
	checkInterval time.Duration
	stopChan      chan struct{}
	stopOnce      sync.Once

	decisions  int64
	nodes      int64
	cutoffs    int64
	truncated  int64
	elapsed    time.Duration
	slowest    time.Duration
	baseline   int
	peak       int
	lastSample int
}

var _ events.Subscriber = (*SearchMonitor)(nil)

// NewSearchMonitor creates a monitor that logs a summary every interval once started
func NewSearchMonitor(id string, interval time.Duration, logger zerolog.Logger) *SearchMonitor {
	baseline := runtime.NumGoroutine()
	return &SearchMonitor{
		id:            id,
		logger:        logger.With().Str("component", "search_monitor").Logger(),
		checkInterval: interval,
		stopChan:      make(chan struct{}),
		baseline:      baseline,
		peak:          baseline,
		lastSample:    baseline,
	}
}

func (sm *SearchMonitor) ID() string { return sm.id }

// InterestedIn returns true only for decisions
func (sm *SearchMonitor) InterestedIn(eventType string) bool {
	return eventType == events.TypeDecisionMade
}

// HandleEvent folds one decision into the running totals
func (sm *SearchMonitor) HandleEvent(event events.Event) {
	d, ok := event.(*events.DecisionMadeEvent)
	if !ok {
		return
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.decisions++
	sm.nodes += d.Nodes
	sm.cutoffs += d.Cutoffs
	sm.elapsed += d.Elapsed
	if d.Truncated {
		sm.truncated++
	}
	if d.Elapsed > sm.slowest {
		sm.slowest = d.Elapsed
	}
}

// Start begins periodic sampling and logging
func (sm *SearchMonitor) Start() {
	go sm.monitor()
	sm.logger.Debug().
		Int("baseline_goroutines", sm.baseline).
		Dur("interval", sm.checkInterval).
		Msg("Started search monitoring")
}

// Stop ends sampling and logs the final summary. It is safe to call twice.
func (sm *SearchMonitor) Stop() {
	sm.stopOnce.Do(func() {
		close(sm.stopChan)
		sm.sample()
		sm.logMetrics("Search metrics final")
	})
}

func (sm *SearchMonitor) monitor() {
	ticker := time.NewTicker(sm.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sm.sample()
			sm.logMetrics("Search metrics")
		case <-sm.stopChan:
			return
		}
	}
}

// sample records the current goroutine count
func (sm *SearchMonitor) sample() {
	current := runtime.NumGoroutine()

	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.lastSample = current
	if current > sm.peak {
		sm.peak = current
	}
}

func (sm *SearchMonitor) logMetrics(msg string) {
	m := sm.GetMetrics()
	sm.logger.Info().
		Int64("decisions", m.Decisions).
		Int64("nodes", m.Nodes).
		Float64("nodes_per_sec", m.NodesPerSecond).
		Float64("cutoffs_per_node", m.CutoffRatio).
		Int64("truncated", m.Truncated).
		Dur("slowest", m.Slowest).
		Int("peak_goroutines", m.PeakGoroutines).
		Msg(msg)
}

// GetMetrics returns a snapshot of the totals
func (sm *SearchMonitor) GetMetrics() SearchMetrics {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	m := SearchMetrics{
		Decisions:      sm.decisions,
		Nodes:          sm.nodes,
		Cutoffs:        sm.cutoffs,
		Truncated:      sm.truncated,
		TotalElapsed:   sm.elapsed,
		Slowest:        sm.slowest,
		Goroutines:     sm.lastSample,
		PeakGoroutines: sm.peak,
	}
	if sm.elapsed > 0 {
		m.NodesPerSecond = float64(sm.nodes) / sm.elapsed.Seconds()
	}
	if sm.nodes > 0 {
		m.CutoffRatio = float64(sm.cutoffs) / float64(sm.nodes)
	}
	return m
}

// SearchMetrics contains aggregated decision statistics
type SearchMetrics struct {
	Decisions      int64         `json:"decisions"`
	Nodes          int64         `json:"nodes"`
	Cutoffs        int64         `json:"cutoffs"`
	Truncated      int64         `json:"truncated"`
	TotalElapsed   time.Duration `json:"total_elapsed"`
	Slowest        time.Duration `json:"slowest"`
	NodesPerSecond float64       `json:"nodes_per_second"`
	CutoffRatio    float64       `json:"cutoff_ratio"`
	Goroutines     int           `json:"goroutines"`
	PeakGoroutines int           `json:"peak_goroutines"`
}
