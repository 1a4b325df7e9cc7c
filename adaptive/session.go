package adaptive

import (
	"sort"
	"strconv"

	"github.com/evdnx/gotf/ledger"
	"github.com/evdnx/gotf/logger"
)

// SessionScheduler learns which UTC hours are worth trading. Outcomes are
// recorded under the session metric tagged with the hour bucket; hours with
// enough samples are classified as golden (high accuracy) or dead (low
// accuracy), and the filter blocks dead hours outright. Once any golden hour
// exists, trading narrows to golden hours only.
type SessionScheduler struct {
	MinTotal   int // validated samples before any classification
	MinPerHour int // validated samples an hour needs to be classified
	Frequency  int // new validated samples between reclassifications

	log       logger.Logger
	watermark int
	golden    map[int]bool
	dead      map[int]bool
}

func NewSessionScheduler(log logger.Logger) *SessionScheduler {
	return &SessionScheduler{
		MinTotal:   20,
		MinPerHour: 3,
		Frequency:  10,
		log:        log,
		golden:     make(map[int]bool),
		dead:       make(map[int]bool),
	}
}

// Tick reclassifies the hour buckets when enough new outcomes have arrived.
// Same watermark debounce as Controller.
func (s *SessionScheduler) Tick(led *ledger.Ledger) bool {
	total := led.Validated(MetricSession)
	if total < s.MinTotal {
		return false
	}
	if total-s.watermark < s.Frequency {
		return false
	}
	s.watermark = total

	golden := make(map[int]bool)
	dead := make(map[int]bool)
	for hour := 0; hour < 24; hour++ {
		tag := strconv.Itoa(hour)
		resolved := led.Query(MetricSession, func(smp ledger.Sample) bool {
			return smp.Outcome != ledger.Pending && smp.Tag == tag
		})
		if len(resolved) < s.MinPerHour {
			continue
		}
		wins := 0
		for _, smp := range resolved {
			if smp.Outcome == ledger.Success {
				wins++
			}
		}
		acc := float64(wins) / float64(len(resolved))
		switch {
		case acc > 0.70:
			golden[hour] = true
		case acc < 0.40:
			dead[hour] = true
		}
	}
	s.golden = golden
	s.dead = dead
	s.log.Info("session_hours_classified",
		logger.Any("golden", hourList(golden)),
		logger.Any("dead", hourList(dead)),
	)
	return true
}

// IsGoodTradingHour reports whether signals arriving in the given UTC hour
// should be acted on. Dead hours are always blocked; when golden hours have
// been identified, only those pass. With no classification yet every hour is
// tradable.
func (s *SessionScheduler) IsGoodTradingHour(hour int) bool {
	if s.dead[hour] {
		return false
	}
	if len(s.golden) > 0 {
		return s.golden[hour]
	}
	return true
}

// GoldenHours returns the currently classified golden hours, sorted.
func (s *SessionScheduler) GoldenHours() []int { return hourList(s.golden) }

// DeadHours returns the currently classified dead hours, sorted.
func (s *SessionScheduler) DeadHours() []int { return hourList(s.dead) }

func hourList(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for h := range set {
		out = append(out, h)
	}
	sort.Ints(out)
	return out
}
