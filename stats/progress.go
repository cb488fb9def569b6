// Package stats tracks and periodically logs throughput while a long-running
// batch operation (chunking a large scene, walking an IFC tree) is in
// progress.
package stats

import (
	"log"
	"time"
)

// Progress tracks unit-of-work throughput and logs a summary at most once
// per second. Call Tick once per completed unit (e.g. once per written
// window). Progress is not safe for concurrent use.
type Progress struct {
	label          string
	done           int
	total          int
	startTime      time.Time
	lastLogTime    time.Time
	updateInterval time.Duration
}

// NewProgress creates a Progress tracker for a known total unit count.
// Logs are emitted at most once per updateInterval, which is always one
// second.
//
// Parameters:
//   - label: short description of the work unit, used in log output
//   - total: expected total number of units (0 if unknown)
//
// Returns:
//   - *Progress: the newly created tracker
func NewProgress(label string, total int) *Progress {
	now := time.Now()
	return &Progress{
		label:          label,
		total:          total,
		startTime:      now,
		lastLogTime:    now,
		updateInterval: time.Second,
	}
}

// Tick records completion of one unit of work and logs a throughput summary
// when the update interval has elapsed.
//
// Returns:
//   - bool: true if a summary was logged this call
func (p *Progress) Tick() bool {
	p.done++
	now := time.Now()
	elapsed := now.Sub(p.lastLogTime)
	if elapsed < p.updateInterval {
		return false
	}

	rate := float64(p.done) / now.Sub(p.startTime).Seconds()
	if p.total > 0 {
		log.Printf("[%s] %d/%d (%.1f/s)", p.label, p.done, p.total, rate)
	} else {
		log.Printf("[%s] %d done (%.1f/s)", p.label, p.done, rate)
	}

	p.lastLogTime = now
	return true
}

// Done logs a final summary unconditionally. Call once after the last unit
// of work completes.
func (p *Progress) Done() {
	elapsed := time.Since(p.startTime)
	log.Printf("[%s] finished %d units in %s", p.label, p.done, elapsed.Round(time.Millisecond))
}
