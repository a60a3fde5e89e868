// Package ledger defines the per-user trade journal: account, trades and the
// storage contract the workflow engine writes through.
package ledger

import (
	"context"
	"errors"
	"time"
)

type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

type Result string

const (
	ResultProfit Result = "profit"
	ResultLoss   Result = "loss"
)

// Emotion is the trader's self-reported state before the trade. It is
// journaled but never gates the checklist.
type Emotion string

const (
	EmotionCalm      Emotion = "calm"
	EmotionNeutral   Emotion = "neutral"
	EmotionAnxious   Emotion = "anxious"
	EmotionEmotional Emotion = "emotional"
)

var (
	// ErrNoOpenTrade is returned when a close arrives and the account has no
	// open trade to close.
	ErrNoOpenTrade = errors.New("ledger: no open trade")
	// ErrOpenTradeExists guards the at-most-one-open-trade invariant.
	ErrOpenTradeExists = errors.New("ledger: an open trade already exists")
)

// Trade is one journal entry. It is created open when the checklist passes
// and the entry is confirmed, and mutated exactly once, on close.
type Trade struct {
	TradeID       string
	Symbol        string
	Direction     Direction
	Emotion       Emotion
	Size          float64
	Status        Status
	EntryTime     time.Time
	ExitTime      *time.Time
	BalanceBefore float64
	BalanceAfter  *float64
	Profit        *float64
	Result        Result
}

// Account is the persisted record for one trader. Balance is nil until the
// user sets the starting deposit. Trades are in chronological append order.
type Account struct {
	UserID  int64
	Balance *float64
	Trades  []Trade
}

// HasBalance reports whether the starting deposit was set.
func (a Account) HasBalance() bool { return a.Balance != nil }

// BalanceValue returns the balance or 0 when unset.
func (a Account) BalanceValue() float64 {
	if a.Balance == nil {
		return 0
	}
	return *a.Balance
}

// OpenTrade returns the most recent trade with status open, if any.
// The stores enforce that there is at most one.
func (a Account) OpenTrade() (Trade, bool) {
	for i := len(a.Trades) - 1; i >= 0; i-- {
		if a.Trades[i].Status == StatusOpen {
			return a.Trades[i], true
		}
	}
	return Trade{}, false
}

// TradeClose carries the mutation applied to the open trade on close.
type TradeClose struct {
	Profit       float64
	BalanceAfter float64
	ExitTime     time.Time
	Result       Result
}

// Store is the ledger persistence contract. Writes must be visible to the
// next Load for the same user and atomic for the whole account record.
// Concurrent writers for the same user are not arbitrated; the caller
// serializes per user.
type Store interface {
	// Load returns the account for userID. Unknown users yield an empty
	// account (nil balance, no trades), never an error.
	Load(ctx context.Context, userID int64) (Account, error)
	// SetBalance records the account balance, creating the account if needed.
	SetBalance(ctx context.Context, userID int64, balance float64) error
	// Append adds a trade to the journal. Appending an open trade while
	// another is still open fails with ErrOpenTradeExists.
	Append(ctx context.Context, userID int64, trade Trade) error
	// CloseOpenTrade applies close to the single open trade and updates the
	// account balance to close.BalanceAfter in the same atomic write.
	// Returns ErrNoOpenTrade when nothing is open.
	CloseOpenTrade(ctx context.Context, userID int64, close TradeClose) error
}
