package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tradecoach/internal/ledger"
)

func closedTrade(profit, after float64, exit time.Time) ledger.Trade {
	return ledger.Trade{
		Status:       ledger.StatusClosed,
		Profit:       &profit,
		BalanceAfter: &after,
		ExitTime:     &exit,
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0.0, s.WinRate)
}

func TestSummarizeCountsWinsAndLosses(t *testing.T) {
	now := time.Now()
	trades := []ledger.Trade{
		closedTrade(4.8, 124.8, now),
		closedTrade(-6, 118.8, now),
		closedTrade(5.0, 123.8, now),
	}
	s := Summarize(trades)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.InDelta(t, 66.666, s.WinRate, 0.01)
	assert.Equal(t, 66.7, Round1(s.WinRate))
}

func TestSummarizeOpenTradeCountsAsNotWon(t *testing.T) {
	now := time.Now()
	trades := []ledger.Trade{
		closedTrade(4.8, 124.8, now),
		{Status: ledger.StatusOpen},
	}
	s := Summarize(trades)
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.Equal(t, 50.0, s.WinRate)
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 66.7, Round1(66.66666))
	assert.Equal(t, 33.3, Round1(100.0/3))
	assert.Equal(t, 0.0, Round1(0))
	assert.Equal(t, 100.0, Round1(100))
}

func TestEquitySeriesSkipsOpenTrades(t *testing.T) {
	t1 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	trades := []ledger.Trade{
		closedTrade(-6, 114, t1),
		{Status: ledger.StatusOpen},
		closedTrade(4.56, 118.56, t2),
	}
	points := EquitySeries(trades)
	assert.Len(t, points, 2)
	assert.Equal(t, 114.0, points[0].Balance)
	assert.Equal(t, t1, points[0].Time)
	assert.Equal(t, 118.56, points[1].Balance)
}
