package marketdata

import (
	"errors"
	"time"
)

// ChangeTracker records hourly close samples per symbol and reports the
// fractional change over a short lookback. It backs the correlation engine's
// peer lookups.
type ChangeTracker struct {
	Lookback int // hourly samples between the two compared closes

	samples map[string][]hourSample
}

type hourSample struct {
	at    time.Time
	price float64
}

func NewChangeTracker() *ChangeTracker {
	return &ChangeTracker{
		Lookback: 4,
		samples:  make(map[string][]hourSample),
	}
}

// Update records a price observation. Observations within the same hour
// overwrite each other so each hour keeps its latest close.
func (t *ChangeTracker) Update(symbol string, price float64, now time.Time) {
	hour := now.Truncate(time.Hour)
	seq := t.samples[symbol]
	if n := len(seq); n > 0 && seq[n-1].at.Equal(hour) {
		seq[n-1].price = price
	} else {
		seq = append(seq, hourSample{at: hour, price: price})
	}
	if keep := t.Lookback + 2; len(seq) > keep {
		seq = seq[len(seq)-keep:]
	}
	t.samples[symbol] = seq
}

// RecentChange returns (latest - lookback-ago) / lookback-ago for the symbol.
func (t *ChangeTracker) RecentChange(symbol string) (float64, error) {
	seq := t.samples[symbol]
	if len(seq) < t.Lookback+1 {
		return 0, errors.New("insufficient history")
	}
	latest := seq[len(seq)-1].price
	past := seq[len(seq)-1-t.Lookback].price
	if past == 0 {
		return 0, errors.New("degenerate reference price")
	}
	return (latest - past) / past, nil
}
