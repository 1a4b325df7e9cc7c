package ledger

import (
	"testing"
	"time"
)

func TestRecordAndResolve(t *testing.T) {
	l := New()
	id := l.Record("prediction", Sample{Tag: "BUY", At: time.Now()})
	if id == 0 {
		t.Fatalf("expected a non-zero sample id")
	}
	if got := l.Len("prediction"); got != 1 {
		t.Fatalf("Len = %d, want 1", got)
	}
	if got := l.Validated("prediction"); got != 0 {
		t.Fatalf("pending sample counted as validated: %d", got)
	}

	if !l.Resolve("prediction", id, Success, 12.5) {
		t.Fatalf("first resolve failed")
	}
	if got := l.Validated("prediction"); got != 1 {
		t.Fatalf("Validated = %d, want 1", got)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	l := New()
	id := l.Record("prediction", Sample{})
	if !l.Resolve("prediction", id, Success, 10) {
		t.Fatalf("first resolve failed")
	}
	if l.Resolve("prediction", id, Failure, -5) {
		t.Fatalf("second resolve must be a no-op")
	}
	if got := l.Accuracy("prediction"); got != 1.0 {
		t.Fatalf("outcome was rewritten: accuracy = %g", got)
	}
}

func TestResolveUnknownID(t *testing.T) {
	l := New()
	if l.Resolve("prediction", 42, Success, 1) {
		t.Fatalf("resolving an unknown id must return false")
	}
}

func TestAccuracyAndMagnitudes(t *testing.T) {
	l := New()
	for i, out := range []Outcome{Success, Success, Success, Failure} {
		id := l.Record("prediction", Sample{})
		mag := 20.0
		if out == Failure {
			mag = -10.0
		}
		if !l.Resolve("prediction", id, out, mag) {
			t.Fatalf("resolve %d failed", i)
		}
	}
	if got := l.Accuracy("prediction"); got != 0.75 {
		t.Fatalf("Accuracy = %g, want 0.75", got)
	}
	if got := l.AvgMagnitude("prediction", Success); got != 20 {
		t.Fatalf("AvgMagnitude(Success) = %g, want 20", got)
	}
	// Magnitudes are averaged as absolute values.
	if got := l.AvgMagnitude("prediction", Failure); got != 10 {
		t.Fatalf("AvgMagnitude(Failure) = %g, want 10", got)
	}
}

func TestAccuracyEmptyMetric(t *testing.T) {
	l := New()
	if got := l.Accuracy("nothing"); got != 0 {
		t.Fatalf("Accuracy on empty metric = %g, want 0", got)
	}
	if got := l.AvgMagnitude("nothing", Success); got != 0 {
		t.Fatalf("AvgMagnitude on empty metric = %g, want 0", got)
	}
}

func TestQueryByTag(t *testing.T) {
	l := New()
	for _, tag := range []string{"3", "3", "4"} {
		id := l.Record("alignment", Sample{Tag: tag})
		l.Resolve("alignment", id, Success, 1)
	}
	got := l.Query("alignment", func(s Sample) bool { return s.Tag == "3" })
	if len(got) != 2 {
		t.Fatalf("Query tag=3 returned %d samples, want 2", len(got))
	}
}

func TestTail(t *testing.T) {
	l := New()
	for i := 0; i < 5; i++ {
		l.Record("prediction", Sample{Magnitude: float64(i)})
	}
	tail := l.Tail("prediction", 2)
	if len(tail) != 2 || tail[0].Magnitude != 3 || tail[1].Magnitude != 4 {
		t.Fatalf("Tail returned %+v", tail)
	}
	all := l.Tail("prediction", 10)
	if len(all) != 5 {
		t.Fatalf("Tail beyond length returned %d samples, want 5", len(all))
	}
}
