package gormstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecoach/internal/ledger"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	return store
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestOpenCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "ledger.db")
	_, err := Open(path)
	require.NoError(t, err)
}

func TestLoadUnknownUser(t *testing.T) {
	store := openTestStore(t)
	acc, err := store.Load(context.Background(), 99)
	require.NoError(t, err)
	assert.Equal(t, int64(99), acc.UserID)
	assert.False(t, acc.HasBalance())
	assert.Empty(t, acc.Trades)
}

func TestSetBalanceUpsert(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SetBalance(ctx, 1, 120))
	require.NoError(t, store.SetBalance(ctx, 1, 250))

	acc, err := store.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 250.0, acc.BalanceValue())
}

func TestAppendAndCloseRoundtrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SetBalance(ctx, 1, 120))

	entry := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	trade := ledger.Trade{
		TradeID:       "t-1",
		Symbol:        "BTCUSDT",
		Direction:     ledger.DirectionLong,
		Emotion:       ledger.EmotionCalm,
		Size:          6,
		Status:        ledger.StatusOpen,
		EntryTime:     entry,
		BalanceBefore: 120,
	}
	require.NoError(t, store.Append(ctx, 1, trade))

	acc, err := store.Load(ctx, 1)
	require.NoError(t, err)
	open, ok := acc.OpenTrade()
	require.True(t, ok)
	assert.Equal(t, "t-1", open.TradeID)
	assert.Equal(t, ledger.DirectionLong, open.Direction)
	assert.Equal(t, ledger.EmotionCalm, open.Emotion)
	assert.Nil(t, open.Profit)

	exit := entry.Add(2 * time.Hour)
	err = store.CloseOpenTrade(ctx, 1, ledger.TradeClose{
		Profit:       4.8,
		BalanceAfter: 124.8,
		ExitTime:     exit,
		Result:       ledger.ResultProfit,
	})
	require.NoError(t, err)

	acc, err = store.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 124.8, acc.BalanceValue())
	_, ok = acc.OpenTrade()
	assert.False(t, ok)
	require.Len(t, acc.Trades, 1)
	closed := acc.Trades[0]
	assert.Equal(t, ledger.StatusClosed, closed.Status)
	require.NotNil(t, closed.Profit)
	assert.Equal(t, 4.8, *closed.Profit)
	require.NotNil(t, closed.BalanceAfter)
	assert.Equal(t, 124.8, *closed.BalanceAfter)
	require.NotNil(t, closed.ExitTime)
	assert.Equal(t, exit.Unix(), closed.ExitTime.Unix())
	assert.Equal(t, ledger.ResultProfit, closed.Result)
}

func TestAppendSecondOpenTradeFails(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, 1, ledger.Trade{TradeID: "a", Status: ledger.StatusOpen}))

	err := store.Append(ctx, 1, ledger.Trade{TradeID: "b", Status: ledger.StatusOpen})
	assert.ErrorIs(t, err, ledger.ErrOpenTradeExists)

	// Other users are unaffected.
	require.NoError(t, store.Append(ctx, 2, ledger.Trade{TradeID: "c", Status: ledger.StatusOpen}))
}

func TestCloseWithoutOpenTrade(t *testing.T) {
	store := openTestStore(t)
	err := store.CloseOpenTrade(context.Background(), 1, ledger.TradeClose{
		Profit:       1,
		BalanceAfter: 1,
		ExitTime:     time.Now(),
		Result:       ledger.ResultProfit,
	})
	assert.ErrorIs(t, err, ledger.ErrNoOpenTrade)
}

func TestTradesKeepJournalOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now()
	for i, id := range []string{"t-1", "t-2", "t-3"} {
		require.NoError(t, store.Append(ctx, 1, ledger.Trade{
			TradeID:   id,
			Status:    ledger.StatusOpen,
			EntryTime: now,
		}))
		require.NoError(t, store.CloseOpenTrade(ctx, 1, ledger.TradeClose{
			Profit:       float64(i),
			BalanceAfter: 100 + float64(i),
			ExitTime:     now.Add(time.Duration(i) * time.Minute),
			Result:       ledger.ResultProfit,
		}))
	}
	acc, err := store.Load(ctx, 1)
	require.NoError(t, err)
	require.Len(t, acc.Trades, 3)
	assert.Equal(t, "t-1", acc.Trades[0].TradeID)
	assert.Equal(t, "t-3", acc.Trades[2].TradeID)
}
