package workflow

import (
	"time"

	"tradecoach/internal/ledger"
)

// Session is the ephemeral per-user wizard cursor. It lives in the host's
// memory only: a restart drops sessions but keeps the ledger. The engine
// mutates it in place; the caller must not issue concurrent Handle calls
// for the same session.
type Session struct {
	UserID int64
	State  State
	Draft  *Draft
}

// Draft is the trade under construction while the checklist runs. It is
// discarded whenever the run aborts; nothing partial reaches the ledger.
type Draft struct {
	Emotion   ledger.Emotion
	Symbol    string
	Direction ledger.Direction
	Size      float64
	EntryTime time.Time
}

// NewSession positions a fresh session: first contact without a deposit
// starts at SetBalance, everyone else at the main menu.
func NewSession(userID int64, acc ledger.Account) *Session {
	s := &Session{UserID: userID, State: StateMainMenu}
	if !acc.HasBalance() {
		s.State = StateSetBalance
	}
	return s
}
