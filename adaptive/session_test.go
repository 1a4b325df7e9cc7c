package adaptive

import (
	"strconv"
	"testing"

	"github.com/evdnx/gotf/ledger"
	"github.com/evdnx/gotf/testutils"
)

func recordHour(led *ledger.Ledger, hour, n, wins int) {
	tag := strconv.Itoa(hour)
	for i := 0; i < n; i++ {
		id := led.Record(MetricSession, ledger.Sample{Tag: tag})
		if i < wins {
			led.Resolve(MetricSession, id, ledger.Success, 1)
		} else {
			led.Resolve(MetricSession, id, ledger.Failure, -1)
		}
	}
}

func TestSchedulerAllowsEverythingBeforeClassification(t *testing.T) {
	s := NewSessionScheduler(testutils.NewMockLogger())
	for h := 0; h < 24; h++ {
		if !s.IsGoodTradingHour(h) {
			t.Fatalf("hour %d blocked before any classification", h)
		}
	}
}

func TestSchedulerWaitsForMinimumSamples(t *testing.T) {
	led := ledger.New()
	s := NewSessionScheduler(testutils.NewMockLogger())
	recordHour(led, 9, 19, 19)
	if s.Tick(led) {
		t.Fatalf("classified below the minimum total samples")
	}
}

func TestSchedulerClassifiesGoldenAndDeadHours(t *testing.T) {
	led := ledger.New()
	s := NewSessionScheduler(testutils.NewMockLogger())
	recordHour(led, 9, 10, 9)  // 90%: golden
	recordHour(led, 14, 10, 2) // 20%: dead
	recordHour(led, 11, 10, 6) // 60%: neutral
	recordHour(led, 3, 2, 0)   // too few samples to classify
	if !s.Tick(led) {
		t.Fatalf("expected classification to run")
	}

	if got := s.GoldenHours(); len(got) != 1 || got[0] != 9 {
		t.Fatalf("GoldenHours = %v, want [9]", got)
	}
	if got := s.DeadHours(); len(got) != 1 || got[0] != 14 {
		t.Fatalf("DeadHours = %v, want [14]", got)
	}

	// With golden hours identified, only golden hours pass.
	if !s.IsGoodTradingHour(9) {
		t.Fatalf("golden hour 9 blocked")
	}
	if s.IsGoodTradingHour(14) {
		t.Fatalf("dead hour 14 allowed")
	}
	if s.IsGoodTradingHour(11) {
		t.Fatalf("neutral hour 11 allowed while golden hours exist")
	}
	if s.IsGoodTradingHour(3) {
		t.Fatalf("unclassified hour 3 allowed while golden hours exist")
	}
}

func TestSchedulerBlocksOnlyDeadWithoutGolden(t *testing.T) {
	led := ledger.New()
	s := NewSessionScheduler(testutils.NewMockLogger())
	recordHour(led, 14, 10, 2) // 20%: dead
	recordHour(led, 11, 10, 6) // 60%: neutral
	if !s.Tick(led) {
		t.Fatalf("expected classification to run")
	}
	if s.IsGoodTradingHour(14) {
		t.Fatalf("dead hour 14 allowed")
	}
	if !s.IsGoodTradingHour(11) || !s.IsGoodTradingHour(5) {
		t.Fatalf("non-dead hours blocked with no golden hours present")
	}
}

func TestSchedulerDebounces(t *testing.T) {
	led := ledger.New()
	s := NewSessionScheduler(testutils.NewMockLogger())
	recordHour(led, 9, 20, 18)
	if !s.Tick(led) {
		t.Fatalf("expected first classification")
	}
	if s.Tick(led) {
		t.Fatalf("reclassified on an unchanged ledger")
	}
	recordHour(led, 9, 10, 2)
	if !s.Tick(led) {
		t.Fatalf("expected reclassification after new samples")
	}
}
