package trade

import (
	"errors"
	"testing"
	"time"
)

func TestAttemptSucceedsFirstTry(t *testing.T) {
	tries, err := Attempt(5, time.Second, nil, func() error { return nil }, nil)
	if err != nil || tries != 1 {
		t.Fatalf("tries=%d err=%v, want 1 try and no error", tries, err)
	}
}

func TestAttemptWidensBetweenTries(t *testing.T) {
	failures := 3
	widened := 0
	slept := 0
	sleep := func(time.Duration) { slept++ }
	tries, err := Attempt(10, time.Millisecond, sleep,
		func() error {
			if failures > 0 {
				failures--
				return errors.New("rejected")
			}
			return nil
		},
		func() { widened++ },
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tries != 4 {
		t.Fatalf("tries = %d, want 4", tries)
	}
	if widened != 3 || slept != 3 {
		t.Fatalf("widened=%d slept=%d, want 3 each (between tries only)", widened, slept)
	}
}

func TestAttemptExhaustsAndReturnsLastError(t *testing.T) {
	calls := 0
	tries, err := Attempt(5, 0, nil, func() error {
		calls++
		return errors.New("still rejected")
	}, nil)
	if err == nil {
		t.Fatalf("expected the final error")
	}
	if tries != 5 || calls != 5 {
		t.Fatalf("tries=%d calls=%d, want 5 each", tries, calls)
	}
}
