// Package feed implements the file-based exchange surfaces: the inbound
// signal and review feeds the loop polls, and the outbound state export.
package feed

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/evdnx/gotf/types"
)

const (
	readAttempts = 3
	readPause    = 100 * time.Millisecond
)

// readFileRetry reads a file with a short bounded retry, riding out the
// moment the producer still holds it open.
func readFileRetry(path string, sleep func(time.Duration)) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < readAttempts; attempt++ {
		raw, err := os.ReadFile(path)
		if err == nil {
			return raw, nil
		}
		if os.IsNotExist(err) {
			return nil, err
		}
		lastErr = err
		if attempt < readAttempts-1 && sleep != nil {
			sleep(readPause)
		}
	}
	return nil, lastErr
}

// FileSignalSource polls a JSON file for the latest trade signal.
type FileSignalSource struct {
	Path  string
	Sleep func(time.Duration)
}

func NewFileSignalSource(path string) *FileSignalSource {
	return &FileSignalSource{Path: path, Sleep: time.Sleep}
}

// Poll returns the current signal and true when one is present. A missing
// file is a quiet feed, not an error.
func (s *FileSignalSource) Poll() (types.TradeSignal, bool, error) {
	raw, err := readFileRetry(s.Path, s.Sleep)
	if err != nil {
		if os.IsNotExist(err) {
			return types.TradeSignal{}, false, nil
		}
		return types.TradeSignal{}, false, fmt.Errorf("read signal file: %w", err)
	}
	var sig types.TradeSignal
	if err := json.Unmarshal(raw, &sig); err != nil {
		return types.TradeSignal{}, false, fmt.Errorf("parse signal file: %w", err)
	}
	return sig, true, nil
}

// FileReviewSource polls a JSON file for a batch of position reviews and
// clears it after the batch executes.
type FileReviewSource struct {
	Path  string
	Sleep func(time.Duration)
}

func NewFileReviewSource(path string) *FileReviewSource {
	return &FileReviewSource{Path: path, Sleep: time.Sleep}
}

func (s *FileReviewSource) Poll() (types.ReviewBatch, bool, error) {
	raw, err := readFileRetry(s.Path, s.Sleep)
	if err != nil {
		if os.IsNotExist(err) {
			return types.ReviewBatch{}, false, nil
		}
		return types.ReviewBatch{}, false, fmt.Errorf("read review file: %w", err)
	}
	var batch types.ReviewBatch
	if err := json.Unmarshal(raw, &batch); err != nil {
		return types.ReviewBatch{}, false, fmt.Errorf("parse review file: %w", err)
	}
	return batch, true, nil
}

// Clear removes the review file so an executed batch cannot run twice.
func (s *FileReviewSource) Clear() error {
	err := os.Remove(s.Path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear review file: %w", err)
	}
	return nil
}
