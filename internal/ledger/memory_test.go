package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLoadUnknownUser(t *testing.T) {
	store := NewMemoryStore()
	acc, err := store.Load(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), acc.UserID)
	assert.False(t, acc.HasBalance())
	assert.Empty(t, acc.Trades)
}

func TestMemoryStoreSetBalance(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.SetBalance(ctx, 1, 120))

	acc, err := store.Load(ctx, 1)
	require.NoError(t, err)
	assert.True(t, acc.HasBalance())
	assert.Equal(t, 120.0, acc.BalanceValue())
}

func TestMemoryStoreSingleOpenTrade(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.SetBalance(ctx, 1, 120))
	require.NoError(t, store.Append(ctx, 1, Trade{TradeID: "a", Status: StatusOpen, Size: 6}))

	err := store.Append(ctx, 1, Trade{TradeID: "b", Status: StatusOpen, Size: 6})
	assert.ErrorIs(t, err, ErrOpenTradeExists)

	// The invariant is per user.
	require.NoError(t, store.Append(ctx, 2, Trade{TradeID: "c", Status: StatusOpen}))
}

func TestMemoryStoreCloseOpenTrade(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.SetBalance(ctx, 1, 120))
	require.NoError(t, store.Append(ctx, 1, Trade{TradeID: "a", Status: StatusOpen, Size: 6, BalanceBefore: 120}))

	exit := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	err := store.CloseOpenTrade(ctx, 1, TradeClose{Profit: -6, BalanceAfter: 114, ExitTime: exit, Result: ResultLoss})
	require.NoError(t, err)

	acc, err := store.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 114.0, acc.BalanceValue())
	_, open := acc.OpenTrade()
	assert.False(t, open)
	require.Len(t, acc.Trades, 1)
	closed := acc.Trades[0]
	assert.Equal(t, StatusClosed, closed.Status)
	require.NotNil(t, closed.Profit)
	assert.Equal(t, -6.0, *closed.Profit)
	require.NotNil(t, closed.ExitTime)
	assert.Equal(t, exit, *closed.ExitTime)
	assert.Equal(t, ResultLoss, closed.Result)

	// A second close has nothing left to close.
	err = store.CloseOpenTrade(ctx, 1, TradeClose{Profit: 1, BalanceAfter: 115, ExitTime: exit, Result: ResultProfit})
	assert.ErrorIs(t, err, ErrNoOpenTrade)

	// And a new open trade is allowed again.
	require.NoError(t, store.Append(ctx, 1, Trade{TradeID: "b", Status: StatusOpen, Size: 5.7}))
}

func TestMemoryStoreLoadReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.SetBalance(ctx, 1, 120))
	require.NoError(t, store.Append(ctx, 1, Trade{TradeID: "a", Status: StatusOpen, Size: 6}))

	acc, err := store.Load(ctx, 1)
	require.NoError(t, err)
	acc.Trades[0].Status = StatusClosed
	*acc.Balance = 0

	fresh, err := store.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 120.0, fresh.BalanceValue())
	assert.Equal(t, StatusOpen, fresh.Trades[0].Status)
}

func TestAccountOpenTradePicksMostRecent(t *testing.T) {
	acc := Account{Trades: []Trade{
		{TradeID: "a", Status: StatusClosed},
		{TradeID: "b", Status: StatusOpen},
	}}
	open, ok := acc.OpenTrade()
	assert.True(t, ok)
	assert.Equal(t, "b", open.TradeID)
}
