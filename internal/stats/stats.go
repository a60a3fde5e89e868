// Package stats derives performance feedback from the trade journal.
package stats

import (
	"math"
	"time"

	"tradecoach/internal/ledger"
)

// Summary aggregates the journal for the stats block of the journal view.
type Summary struct {
	Total   int
	Wins    int
	Losses  int
	WinRate float64 // percent, 0 when Total == 0
}

// Summarize counts profitable vs losing trades. Open trades count toward
// Total with profit 0, matching the journal view of the live account.
func Summarize(trades []ledger.Trade) Summary {
	s := Summary{Total: len(trades)}
	for _, t := range trades {
		if t.Profit != nil && *t.Profit > 0 {
			s.Wins++
		}
	}
	s.Losses = s.Total - s.Wins
	if s.Total > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Total) * 100
	}
	return s
}

// WinRate is the percentage of trades with positive profit; 0 for an empty
// journal.
func WinRate(trades []ledger.Trade) float64 {
	return Summarize(trades).WinRate
}

// Round1 rounds to one decimal for presentation (66.666… -> 66.7).
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// EquityPoint is one closed trade's resulting balance at its exit time.
type EquityPoint struct {
	Time    time.Time
	Balance float64
}

// EquitySeries extracts the equity curve from closed trades carrying both a
// balance_after and an exit time, in journal order.
func EquitySeries(trades []ledger.Trade) []EquityPoint {
	points := make([]EquityPoint, 0, len(trades))
	for _, t := range trades {
		if t.BalanceAfter == nil || t.ExitTime == nil {
			continue
		}
		points = append(points, EquityPoint{Time: *t.ExitTime, Balance: *t.BalanceAfter})
	}
	return points
}
