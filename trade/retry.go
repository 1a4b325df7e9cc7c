// Package trade turns approved signals into protected broker positions and
// manages them until close.
package trade

import "time"

// Attempt runs op until it succeeds or attempts are exhausted. After every
// failure widen is invoked (callers use it to relax the rejected request)
// and the loop pauses before the next try. It returns the number of tries
// consumed and the last error, nil on success.
//
// The pause deliberately blocks the calling tick; attempts bound the stall.
func Attempt(attempts int, pause time.Duration, sleep func(time.Duration), op func() error, widen func()) (int, error) {
	var err error
	for try := 1; try <= attempts; try++ {
		if err = op(); err == nil {
			return try, nil
		}
		if try == attempts {
			break
		}
		if widen != nil {
			widen()
		}
		if pause > 0 && sleep != nil {
			sleep(pause)
		}
	}
	return attempts, err
}
