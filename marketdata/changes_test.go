package marketdata

import (
	"testing"
	"time"
)

func TestChangeTracker(t *testing.T) {
	tr := NewChangeTracker()
	start := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	prices := []float64{1.1000, 1.1010, 1.1020, 1.1030, 1.1055}
	for i, p := range prices {
		tr.Update("EURUSD", p, start.Add(time.Duration(i)*time.Hour))
	}
	got, err := tr.RecentChange("EURUSD")
	if err != nil {
		t.Fatalf("RecentChange failed: %v", err)
	}
	want := (1.1055 - 1.1000) / 1.1000
	if diff := got - want; diff > 1e-12 || diff < -1e-12 {
		t.Fatalf("change = %g, want %g", got, want)
	}
}

func TestChangeTrackerNeedsHistory(t *testing.T) {
	tr := NewChangeTracker()
	tr.Update("EURUSD", 1.1, time.Now())
	if _, err := tr.RecentChange("EURUSD"); err == nil {
		t.Fatalf("expected an error with insufficient history")
	}
	if _, err := tr.RecentChange("GHOST"); err == nil {
		t.Fatalf("expected an error for an unknown symbol")
	}
}

func TestChangeTrackerOverwritesWithinHour(t *testing.T) {
	tr := NewChangeTracker()
	base := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		tr.Update("EURUSD", 1.1, base.Add(time.Duration(i)*time.Hour))
	}
	// Two updates in the same hour keep only the latest.
	tr.Update("EURUSD", 1.2, base.Add(5*time.Hour))
	tr.Update("EURUSD", 1.21, base.Add(5*time.Hour+30*time.Minute))
	got, err := tr.RecentChange("EURUSD")
	if err != nil {
		t.Fatalf("RecentChange failed: %v", err)
	}
	want := (1.21 - 1.1) / 1.1
	if diff := got - want; diff > 1e-12 || diff < -1e-12 {
		t.Fatalf("change = %g, want %g", got, want)
	}
}
