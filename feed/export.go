package feed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/evdnx/gotf/types"
)

// PositionSummary is the exported view of one open position.
type PositionSummary struct {
	ID       int64   `json:"id"`
	Type     string  `json:"type"`
	Entry    float64 `json:"entry"`
	SL       float64 `json:"sl"`
	TP       float64 `json:"tp"`
	PnL      float64 `json:"pnl"`
	Strategy string  `json:"strategy"`
}

// SessionStats accumulates closed-trade results since the agent started.
type SessionStats struct {
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	GrossProfit float64 `json:"gross_profit"`
	GrossLoss   float64 `json:"gross_loss"`
}

// StateSnapshot is the periodically exported bot state. It is written for
// external consumers and never read back.
type StateSnapshot struct {
	SnapshotID   string            `json:"snapshot_id"`
	Symbol       string            `json:"symbol"`
	CurrentPrice float64           `json:"current_price"`
	Positions    []PositionSummary `json:"positions"`
	Buckets      map[string]int    `json:"strategy_buckets,omitempty"`
	Balance      float64           `json:"balance"`
	Equity       float64           `json:"equity"`
	DailyTrades  int               `json:"daily_trades"`
	DailyPnL     float64           `json:"daily_pnl"`
	Session      SessionStats      `json:"session"`
	Regime       string            `json:"regime"`
	UpdatedAt    string            `json:"updated_at"`
}

// Exporter writes state snapshots atomically (temp file + rename) so a
// reader never observes a half-written document.
type Exporter struct {
	Path string
}

func NewExporter(path string) *Exporter { return &Exporter{Path: path} }

// Write serializes the snapshot and swaps it into place. The snapshot id
// and timestamp are stamped here.
func (e *Exporter) Write(snap StateSnapshot, now time.Time) error {
	snap.SnapshotID = uuid.NewString()
	snap.UpdatedAt = now.UTC().Format(time.RFC3339)

	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state snapshot: %w", err)
	}
	tmp := e.Path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(e.Path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write state snapshot: %w", err)
	}
	if err := os.Rename(tmp, e.Path); err != nil {
		return fmt.Errorf("publish state snapshot: %w", err)
	}
	return nil
}

// SummarizePositions converts broker positions into their export form.
func SummarizePositions(positions []types.Position) []PositionSummary {
	out := make([]PositionSummary, 0, len(positions))
	for _, p := range positions {
		out = append(out, PositionSummary{
			ID:       p.ID,
			Type:     string(p.Side),
			Entry:    p.EntryPrice,
			SL:       p.StopLoss,
			TP:       p.TakeProfit,
			PnL:      p.NetProfit,
			Strategy: p.Comment,
		})
	}
	return out
}
