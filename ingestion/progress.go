package ingestion

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// ProgressTracker prints a status line as batches complete. Add may be
// called from concurrent batch writers.
type ProgressTracker struct {
	w        io.Writer
	label    string
	total    int64
	interval int64
	start    time.Time

	done atomic.Int64
	next atomic.Int64 // count at which the next line is printed

	mu       sync.Mutex // serializes output
	finished bool
}

// NewProgressTracker starts the clock on total items and prints a line to w
// each time another interval items have completed.
func NewProgressTracker(w io.Writer, label string, total, interval int) *ProgressTracker {
	p := &ProgressTracker{
		w:        w,
		label:    label,
		total:    int64(total),
		interval: int64(max(interval, 1)),
		start:    time.Now(),
	}
	p.next.Store(p.interval)
	return p
}

// Add records n more completed items.
func (p *ProgressTracker) Add(n int) {
	done := p.done.Add(int64(n))
	for {
		next := p.next.Load()
		if done < next {
			return
		}
		if p.next.CompareAndSwap(next, done+p.interval) {
			p.print(min(done, p.total))
			return
		}
	}
}

// Current returns the number of completed items, capped at the total.
func (p *ProgressTracker) Current() int {
	return int(min(p.done.Load(), p.total))
}

// Elapsed returns the time since the tracker was created.
func (p *ProgressTracker) Elapsed() time.Duration {
	return time.Since(p.start)
}

// Finish prints the final line. Later calls do nothing.
func (p *ProgressTracker) Finish() {
	p.print(int64(p.Current()))

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.finished {
		p.finished = true
		fmt.Fprintln(p.w)
	}
}

func (p *ProgressTracker) print(done int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished {
		return
	}

	percent := 100.0
	if p.total > 0 {
		percent = float64(done) / float64(p.total) * 100
	}
	rate := float64(done) / max(time.Since(p.start).Seconds(), 1e-9)

	fmt.Fprintf(p.w, "\r%s: %d/%d (%.1f%%) %.1f/s", p.label, done, p.total, percent, rate)
}
