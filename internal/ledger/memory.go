package ledger

import (
	"context"
	"sync"
)

// MemoryStore is a map-backed Store. It backs the engine tests and the
// storage.path="" mode where the journal is not kept across restarts.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[int64]*Account
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[int64]*Account)}
}

func (m *MemoryStore) Load(_ context.Context, userID int64) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[userID]
	if !ok {
		return Account{UserID: userID}, nil
	}
	return cloneAccount(acc), nil
}

func (m *MemoryStore) SetBalance(_ context.Context, userID int64, balance float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc := m.account(userID)
	b := balance
	acc.Balance = &b
	return nil
}

func (m *MemoryStore) Append(_ context.Context, userID int64, trade Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc := m.account(userID)
	if trade.Status == StatusOpen {
		if _, ok := acc.OpenTrade(); ok {
			return ErrOpenTradeExists
		}
	}
	acc.Trades = append(acc.Trades, trade)
	return nil
}

func (m *MemoryStore) CloseOpenTrade(_ context.Context, userID int64, close TradeClose) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc := m.account(userID)
	for i := len(acc.Trades) - 1; i >= 0; i-- {
		t := &acc.Trades[i]
		if t.Status != StatusOpen {
			continue
		}
		profit := close.Profit
		after := close.BalanceAfter
		exit := close.ExitTime
		t.Status = StatusClosed
		t.Profit = &profit
		t.BalanceAfter = &after
		t.ExitTime = &exit
		t.Result = close.Result
		acc.Balance = &after
		return nil
	}
	return ErrNoOpenTrade
}

func (m *MemoryStore) account(userID int64) *Account {
	acc, ok := m.accounts[userID]
	if !ok {
		acc = &Account{UserID: userID}
		m.accounts[userID] = acc
	}
	return acc
}

func cloneAccount(acc *Account) Account {
	out := Account{UserID: acc.UserID}
	if acc.Balance != nil {
		b := *acc.Balance
		out.Balance = &b
	}
	out.Trades = make([]Trade, len(acc.Trades))
	for i, t := range acc.Trades {
		out.Trades[i] = cloneTrade(t)
	}
	return out
}

func cloneTrade(t Trade) Trade {
	if t.ExitTime != nil {
		exit := *t.ExitTime
		t.ExitTime = &exit
	}
	if t.BalanceAfter != nil {
		after := *t.BalanceAfter
		t.BalanceAfter = &after
	}
	if t.Profit != nil {
		p := *t.Profit
		t.Profit = &p
	}
	return t
}
