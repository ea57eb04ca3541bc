// Package performance provides performance tracking and monitoring capabilities
// for Edify operations.
package performance

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Tracker manages performance markers and provides metrics aggregation
type Tracker struct {
	active    map[string]*Marker // Running markers by ID
	completed []Marker           // Completed markers, oldest first
	alerts    []PerformanceAlert // Recent threshold violations
	mu        sync.RWMutex       // Protects concurrent access
	started   time.Time          // When tracking started
	config    *TrackerConfig     // Tracker configuration
}

// TrackerConfig contains configuration options for the performance tracker
type TrackerConfig struct {
	MaxMarkers    int           `json:"maxMarkers"`    // Completed markers retained
	MaxAlerts     int           `json:"maxAlerts"`     // Alerts retained
	SlowThreshold time.Duration `json:"slowThreshold"` // Duration that raises an alert
	EnableAlerts  bool          `json:"enableAlerts"`  // Whether to generate performance alerts
}

// DefaultTrackerConfig returns a sensible default configuration
func DefaultTrackerConfig() *TrackerConfig {
	return &TrackerConfig{
		MaxMarkers:    5000,
		MaxAlerts:     200,
		SlowThreshold: 500 * time.Millisecond,
		EnableAlerts:  true,
	}
}

// NewTracker creates a new performance tracker with the given configuration
func NewTracker(config *TrackerConfig) *Tracker {
	if config == nil {
		config = DefaultTrackerConfig()
	}
	return &Tracker{
		active:  make(map[string]*Marker),
		started: time.Now(),
		config:  config,
	}
}

// StartOperation creates and tracks a new performance marker for an operation
func (t *Tracker) StartOperation(operation string) *Marker {
	marker := &Marker{
		ID:        ulid.Make().String(),
		Operation: operation,
		StartTime: time.Now(),
		Metadata:  make(map[string]any),
		Success:   true, // Assume success until proven otherwise
	}

	t.mu.Lock()
	t.active[marker.ID] = marker
	t.mu.Unlock()

	return marker
}

// CompleteOperation completes a marker, records it and checks it against
// the slow threshold. Completing twice is a no-op.
func (t *Tracker) CompleteOperation(marker *Marker) {
	if marker == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.active[marker.ID]; !ok {
		return
	}
	delete(t.active, marker.ID)
	marker.Complete()

	t.completed = append(t.completed, *marker)
	if over := len(t.completed) - t.config.MaxMarkers; over > 0 {
		t.completed = append(t.completed[:0:0], t.completed[over:]...)
	}

	if t.config.EnableAlerts && marker.Duration > t.config.SlowThreshold {
		t.alerts = append(t.alerts, PerformanceAlert{
			Timestamp: marker.EndTime,
			Operation: marker.Operation,
			Threshold: t.config.SlowThreshold,
			Actual:    marker.Duration,
			Message:   "Operation exceeded slow response time threshold",
		})
		if over := len(t.alerts) - t.config.MaxAlerts; over > 0 {
			t.alerts = append(t.alerts[:0:0], t.alerts[over:]...)
		}
	}
}

// GetRecentMetrics returns metrics for operations completed within the specified duration
func (t *Tracker) GetRecentMetrics(within time.Duration) []Marker {
	t.mu.RLock()
	defer t.mu.RUnlock()

	cutoff := time.Now().Add(-within)
	var metrics []Marker
	for _, marker := range t.completed {
		if marker.EndTime.After(cutoff) {
			metrics = append(metrics, marker)
		}
	}
	return metrics
}

// GetMetrics returns completed markers whose operation starts with prefix.
func (t *Tracker) GetMetrics(prefix string) []Marker {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var metrics []Marker
	for _, marker := range t.completed {
		if strings.HasPrefix(marker.Operation, prefix) {
			metrics = append(metrics, marker)
		}
	}
	return metrics
}

// TakeSnapshot summarizes everything retained so far.
func (t *Tracker) TakeSnapshot() *PerformanceSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	byOperation := make(map[string]*OperationStats)
	var total time.Duration
	failures := 0
	for _, m := range t.completed {
		stats, ok := byOperation[m.Operation]
		if !ok {
			stats = &OperationStats{Operation: m.Operation}
			byOperation[m.Operation] = stats
		}
		stats.Count++
		total = stats.Average*time.Duration(stats.Count-1) + m.Duration
		stats.Average = total / time.Duration(stats.Count)
		if m.Duration > stats.Max {
			stats.Max = m.Duration
		}
		if m.EndTime.After(stats.Last) {
			stats.Last = m.EndTime
		}
		if !m.Success {
			stats.Failures++
			failures++
		}
	}

	operations := make([]OperationStats, 0, len(byOperation))
	for _, stats := range byOperation {
		operations = append(operations, *stats)
	}
	sort.Slice(operations, func(i, j int) bool { return operations[i].Operation < operations[j].Operation })

	return &PerformanceSnapshot{
		Timestamp:           time.Now(),
		Uptime:              time.Since(t.started),
		OverallHealth:       t.calculateHealth(len(t.completed), failures, len(t.alerts)),
		ActiveOperations:    len(t.active),
		CompletedOperations: len(t.completed),
		Operations:          operations,
		Alerts:              append([]PerformanceAlert(nil), t.alerts...),
	}
}

// calculateHealth determines overall system health from failure and slow ratios
func (t *Tracker) calculateHealth(completed, failures, slow int) HealthStatus {
	if completed == 0 {
		return HealthUnknown
	}
	failureRatio := float64(failures) / float64(completed)
	slowRatio := float64(slow) / float64(completed)

	if failureRatio > 0.1 { // More than 10% failing
		return HealthUnhealthy
	} else if failureRatio > 0.05 || slowRatio > 0.2 {
		return HealthDegraded
	}
	return HealthHealthy
}

// Cleanup drops completed markers older than maxAge and abandons active
// markers that never finished.
func (t *Tracker) Cleanup(maxAge time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	kept := t.completed[:0]
	for _, m := range t.completed {
		if m.EndTime.After(cutoff) {
			kept = append(kept, m)
		}
	}
	t.completed = kept

	for id, m := range t.active {
		if m.StartTime.Before(cutoff) {
			delete(t.active, id)
		}
	}
}
