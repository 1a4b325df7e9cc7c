// Package ledger keeps the windowed outcome records that drive parameter
// adaptation. It is an append-only store: samples enter pending, are resolved
// exactly once, and are never rewritten afterwards. Controllers window the
// history themselves; the ledger only accumulates.
package ledger

import (
	"math"
	"time"
)

type Outcome int

const (
	Pending Outcome = iota
	Success
	Failure
)

// Sample is one outcome record for a tracked metric. Tag carries the
// categorical dimension (alignment level, period, session hour) the sample
// was recorded under. Magnitude is metric-specific: pips moved, lag bars,
// realized R:R and so on.
type Sample struct {
	ID        int64
	Tag       string
	Outcome   Outcome
	Magnitude float64
	At        time.Time
}

// Ledger is single-writer, single-reader: all access happens from the tick
// context, so there is no locking.
type Ledger struct {
	samples map[string][]Sample
	nextID  int64
}

func New() *Ledger {
	return &Ledger{samples: make(map[string][]Sample)}
}

// Record appends a sample under metric and returns its id for later
// resolution.
func (l *Ledger) Record(metric string, s Sample) int64 {
	l.nextID++
	s.ID = l.nextID
	l.samples[metric] = append(l.samples[metric], s)
	return s.ID
}

// Resolve marks a pending sample with its outcome and magnitude. Resolving a
// sample twice or an unknown id is a no-op and returns false.
func (l *Ledger) Resolve(metric string, id int64, outcome Outcome, magnitude float64) bool {
	seq := l.samples[metric]
	for i := range seq {
		if seq[i].ID == id {
			if seq[i].Outcome != Pending {
				return false
			}
			seq[i].Outcome = outcome
			seq[i].Magnitude = magnitude
			return true
		}
	}
	return false
}

// Len returns the total number of samples recorded under metric.
func (l *Ledger) Len(metric string) int { return len(l.samples[metric]) }

// Validated returns the number of resolved (non-pending) samples.
func (l *Ledger) Validated(metric string) int {
	return l.Count(metric, func(s Sample) bool { return s.Outcome != Pending })
}

// Count returns the number of samples matching pred.
func (l *Ledger) Count(metric string, pred func(Sample) bool) int {
	n := 0
	for _, s := range l.samples[metric] {
		if pred(s) {
			n++
		}
	}
	return n
}

// Query returns a copy of the samples matching pred.
func (l *Ledger) Query(metric string, pred func(Sample) bool) []Sample {
	var out []Sample
	for _, s := range l.samples[metric] {
		if pred(s) {
			out = append(out, s)
		}
	}
	return out
}

// Accuracy is the success share of validated samples, 0 when none resolved.
func (l *Ledger) Accuracy(metric string) float64 {
	validated := l.Validated(metric)
	if validated == 0 {
		return 0
	}
	wins := l.Count(metric, func(s Sample) bool { return s.Outcome == Success })
	return float64(wins) / float64(validated)
}

// AvgMagnitude returns the mean absolute magnitude of samples with the given
// outcome, 0 when there are none.
func (l *Ledger) AvgMagnitude(metric string, outcome Outcome) float64 {
	sum, n := 0.0, 0
	for _, s := range l.samples[metric] {
		if s.Outcome == outcome {
			sum += math.Abs(s.Magnitude)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Tail returns a copy of the last n samples under metric (rolling windows).
func (l *Ledger) Tail(metric string, n int) []Sample {
	seq := l.samples[metric]
	if n >= len(seq) {
		n = len(seq)
	}
	out := make([]Sample, n)
	copy(out, seq[len(seq)-n:])
	return out
}
