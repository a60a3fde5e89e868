// Package workflow drives the pre-trade discipline wizard: an explicit
// state machine over the checklist, position sizing and the trade journal.
package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tradecoach/internal/coach"
	"tradecoach/internal/ledger"
	"tradecoach/internal/stats"
)

// ChartRenderer turns an equity series into a PNG for the journal view.
type ChartRenderer interface {
	EquityChart(ctx context.Context, points []stats.EquityPoint) ([]byte, error)
}

type handlerFunc func(ctx context.Context, s *Session, acc ledger.Account, in Input) (Reply, error)

// Engine executes wizard transitions. It is stateless between calls apart
// from the Session the caller owns; the caller must serialize calls per
// user (one in flight per user id).
type Engine struct {
	store    ledger.Store
	coach    *coach.Selector
	charts   ChartRenderer
	now      func() time.Time
	handlers map[State]handlerFunc
}

type Option func(*Engine)

// WithChartRenderer enables the equity-curve attachment on the journal view.
func WithChartRenderer(r ChartRenderer) Option {
	return func(e *Engine) { e.charts = r }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(store ledger.Store, selector *coach.Selector, opts ...Option) *Engine {
	e := &Engine{store: store, coach: selector, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	e.handlers = map[State]handlerFunc{
		StateSetBalance:              e.handleSetBalance,
		StateMainMenu:                e.handleMainMenu,
		StateEmotionCheck:            e.handleEmotionCheck,
		StatePlanCheck:               e.handlePlanCheck,
		StateSymbolEntry:             e.handleSymbolEntry,
		StateDirectionSelect:         e.handleDirectionSelect,
		StateExtremumCheck:           e.handleExtremumCheck,
		StateLiquidityZoneCheck:      e.handleLiquidityZoneCheck,
		StateBreakoutCheck:           e.handleBreakoutCheck,
		StateBounceConfirmationCheck: e.handleBounceConfirmationCheck,
		StateEntryConfirmation:       e.handleEntryConfirmation,
		StateTradeResult:             e.handleTradeResult,
	}
	return e
}

// Start handles first contact (/start): greet and ask for the deposit when
// the account has none, otherwise drop into the main menu.
func (e *Engine) Start(ctx context.Context, s *Session, firstName string) (Reply, error) {
	acc, err := e.store.Load(ctx, s.UserID)
	if err != nil {
		return Reply{}, fmt.Errorf("workflow: load account %d: %w", s.UserID, err)
	}
	s.Draft = nil
	if !acc.HasBalance() {
		s.State = StateSetBalance
		greeting := "👋 Привет!"
		if name := strings.TrimSpace(firstName); name != "" {
			greeting = fmt.Sprintf("👋 Привет, %s!", name)
		}
		text := greeting + "\n\nЯ твой личный трейдинг-помощник.\n\n💰 Для начала установи свой стартовый депозит:"
		kb := [][]Button{{{Label: "💰 Установить баланс", Input: Input{Answer: AnswerAccept}}}}
		return Reply{Text: text, Keyboard: kb}, nil
	}
	s.State = StateMainMenu
	return e.renderMainMenu(acc), nil
}

// Handle applies one inbound action to the session and returns the reply.
// A returned error means the transition did not happen and the session
// state is unchanged (storage failures); the caller decides how to surface
// it, typically by asking the user to retry.
func (e *Engine) Handle(ctx context.Context, s *Session, in Input) (Reply, error) {
	acc, err := e.store.Load(ctx, s.UserID)
	if err != nil {
		return Reply{}, fmt.Errorf("workflow: load account %d: %w", s.UserID, err)
	}

	// Universal reset: every state accepts "main menu" and abandons the
	// draft. Before the deposit is set there is no menu to go to.
	if in.Answer == AnswerMainMenu && acc.HasBalance() {
		s.Draft = nil
		s.State = StateMainMenu
		return e.renderMainMenu(acc), nil
	}

	// Fixed-predecessor back edges: one level, keyed per state.
	if in.Answer == AnswerBack {
		if target, ok := backTargets[s.State]; ok {
			s.State = target
			return e.render(s, acc, ""), nil
		}
	}

	h, ok := e.handlers[s.State]
	if !ok {
		s.State = StateMainMenu
		if !acc.HasBalance() {
			s.State = StateSetBalance
		}
		return e.render(s, acc, ""), nil
	}
	return h(ctx, s, acc, in)
}

// invalid re-prompts the current state with an error annotation.
func (e *Engine) invalid(s *Session, acc ledger.Account) Reply {
	return e.render(s, acc, "❌ Не понял. Выбери вариант на клавиатуре.")
}

// abort ends the wizard run: draft discarded, back to the menu with a
// category-flavored coach message.
func (e *Engine) abort(s *Session, acc ledger.Account, cat coach.Category, text string) Reply {
	s.Draft = nil
	s.State = StateMainMenu
	return Reply{
		Text:     text + "\n\n" + e.coach.Pick(cat, e.coachContext(acc)),
		Keyboard: menuOnlyKeyboard(),
	}
}

func (e *Engine) coachContext(acc ledger.Account) coach.Context {
	cctx := coach.Context{
		Balance:    acc.BalanceValue(),
		WinRate:    stats.WinRate(acc.Trades),
		TradeCount: len(acc.Trades),
	}
	if n := len(acc.Trades); n > 0 {
		if p := acc.Trades[n-1].Profit; p != nil {
			cctx.LastProfit = *p
		}
	}
	return cctx
}
