package workflow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradecoach/internal/coach"
	"tradecoach/internal/ledger"
	"tradecoach/internal/logger"
	"tradecoach/internal/risk"
	"tradecoach/internal/stats"
)

// winPayoutRatio is the fixed payout model of the journal: a win banks 80%
// of the position, a loss forfeits the whole position. Since the position
// is always a fraction of the balance, the balance stays non-negative.
const winPayoutRatio = 0.8

func (e *Engine) handleSetBalance(ctx context.Context, s *Session, acc ledger.Account, in Input) (Reply, error) {
	// The greeting keyboard's single button asks for the amount.
	if in.Answer == AnswerAccept {
		return Reply{Text: "Введи сумму стартового депозита (в USD):", RemoveKeyboard: true}, nil
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return Reply{Text: "❌ Нужно число больше нуля. Введи сумму депозита:", RemoveKeyboard: true}, nil
	}
	balance, err := strconv.ParseFloat(text, 64)
	if err != nil || balance <= 0 {
		return Reply{Text: "❌ Нужно число больше нуля. Введи сумму депозита:", RemoveKeyboard: true}, nil
	}
	if err := e.store.SetBalance(ctx, s.UserID, balance); err != nil {
		return Reply{}, fmt.Errorf("workflow: set balance: %w", err)
	}
	s.State = StateMainMenu
	acc.Balance = &balance
	msg := fmt.Sprintf("✅ Отлично! Стартовый баланс: $%.2f\n\n%s",
		balance, e.coach.Pick(coach.CategoryGeneral, e.coachContext(acc)))
	return Reply{Text: msg, Keyboard: menuOnlyKeyboard()}, nil
}

// handleMainMenu dispatches menu actions. Views render and stay in the
// menu; nothing here mutates the account.
func (e *Engine) handleMainMenu(ctx context.Context, s *Session, acc ledger.Account, in Input) (Reply, error) {
	switch in.Menu {
	case MenuNewTrade:
		s.State = StateEmotionCheck
		return e.render(s, acc, ""), nil
	case MenuJournal:
		return e.journalView(ctx, acc), nil
	case MenuBalance:
		balance := acc.BalanceValue()
		text := fmt.Sprintf("💰 Твой баланс: $%.2f\n🎯 Рекомендуемый размер позиции: $%.2f\n\n💡 %s",
			balance, risk.PositionSize(balance), e.coach.Pick(coach.CategoryGeneral, e.coachContext(acc)))
		return Reply{Text: text, Keyboard: menuOnlyKeyboard()}, nil
	case MenuMotivation:
		text := "💡 Мотивация для тебя:\n\n" + e.coach.Pick(coach.CategoryGeneral, e.coachContext(acc))
		return Reply{Text: text, Keyboard: menuOnlyKeyboard()}, nil
	default:
		return e.invalid(s, acc), nil
	}
}

func (e *Engine) journalView(ctx context.Context, acc ledger.Account) Reply {
	if len(acc.Trades) == 0 {
		text := "📭 У тебя еще нет сделок\n\n" + e.coach.Pick(coach.CategoryGeneral, e.coachContext(acc))
		return Reply{Text: text, Keyboard: menuOnlyKeyboard()}
	}
	reply := Reply{Text: e.renderJournal(acc), Keyboard: menuOnlyKeyboard()}
	points := stats.EquitySeries(acc.Trades)
	if len(points) >= 2 && e.charts != nil {
		png, err := e.charts.EquityChart(ctx, points)
		if err != nil {
			logger.Warnf("workflow: equity chart render failed for user %d: %v", acc.UserID, err)
		} else if len(png) > 0 {
			reply.Photo = &Photo{Bytes: png, Filename: "equity.png"}
		}
	}
	return reply
}

func (e *Engine) handleEmotionCheck(_ context.Context, s *Session, acc ledger.Account, in Input) (Reply, error) {
	switch in.Emotion {
	case ledger.EmotionCalm, ledger.EmotionNeutral, ledger.EmotionAnxious, ledger.EmotionEmotional:
	default:
		return e.invalid(s, acc), nil
	}
	// Emotion is journaled, never enforced: an anxious trader still gets to
	// walk the checklist.
	s.Draft = &Draft{Emotion: in.Emotion}
	s.State = StatePlanCheck
	return e.render(s, acc, ""), nil
}

func (e *Engine) handlePlanCheck(_ context.Context, s *Session, acc ledger.Account, in Input) (Reply, error) {
	switch in.Answer {
	case AnswerAccept:
		s.State = StateSymbolEntry
		return e.render(s, acc, ""), nil
	case AnswerReject:
		return e.abort(s, acc, coach.CategoryLoss,
			"⛔ Стоит остановиться!\n\nЛучше подготовиться:\n• 📝 Проверить анализ\n• ⏳ Дождаться сигналов"), nil
	default:
		return e.invalid(s, acc), nil
	}
}

func (e *Engine) handleSymbolEntry(_ context.Context, s *Session, acc ledger.Account, in Input) (Reply, error) {
	symbol := strings.ToUpper(strings.TrimSpace(in.Text))
	if symbol == "" {
		return e.invalid(s, acc), nil
	}
	if s.Draft == nil {
		s.Draft = &Draft{}
	}
	s.Draft.Symbol = symbol
	s.State = StateDirectionSelect
	return e.render(s, acc, ""), nil
}

func (e *Engine) handleDirectionSelect(_ context.Context, s *Session, acc ledger.Account, in Input) (Reply, error) {
	if in.Direction != ledger.DirectionLong && in.Direction != ledger.DirectionShort {
		return e.invalid(s, acc), nil
	}
	if s.Draft == nil {
		s.Draft = &Draft{}
	}
	s.Draft.Direction = in.Direction
	s.State = StateExtremumCheck
	return e.render(s, acc, ""), nil
}

func (e *Engine) handleExtremumCheck(_ context.Context, s *Session, acc ledger.Account, in Input) (Reply, error) {
	switch in.Answer {
	case AnswerAccept:
		s.State = StateLiquidityZoneCheck
		return e.render(s, acc, ""), nil
	case AnswerReject:
		return e.abort(s, acc, coach.CategoryLoss,
			"❌ Стоит подождать!\n\nЛучше дождаться четкого уровня:\n• ⏳ Ждать формирования экстремума\n• 📊 Перейти на старший таймфрейм"), nil
	default:
		return e.invalid(s, acc), nil
	}
}

func (e *Engine) handleLiquidityZoneCheck(_ context.Context, s *Session, acc ledger.Account, in Input) (Reply, error) {
	switch in.Answer {
	case AnswerAccept:
		s.State = StateBreakoutCheck
		return e.render(s, acc, ""), nil
	case AnswerReject:
		return e.abort(s, acc, coach.CategoryLoss,
			"⚠️ Нужно найти зону!\n\nЧто делать:\n• 🔍 Перепроверить график\n• 📊 Проверить на старшем таймфрейме"), nil
	default:
		return e.invalid(s, acc), nil
	}
}

func (e *Engine) handleBreakoutCheck(_ context.Context, s *Session, acc ledger.Account, in Input) (Reply, error) {
	switch in.Answer {
	case AnswerAccept:
		s.State = StateBounceConfirmationCheck
		return e.render(s, acc, ""), nil
	case AnswerReject:
		// No sweep yet is not a mistake, just not the moment: soft message.
		return e.abort(s, acc, coach.CategoryGeneral,
			"⏳ Нужно дождаться пробоя!\n\nЧто делать:\n• 👀 Наблюдать за зоной\n• ⛔ Не входить без пробоя"), nil
	default:
		return e.invalid(s, acc), nil
	}
}

func (e *Engine) handleBounceConfirmationCheck(_ context.Context, s *Session, acc ledger.Account, in Input) (Reply, error) {
	switch in.Answer {
	case AnswerAccept:
		if s.Draft == nil {
			s.Draft = &Draft{}
		}
		s.Draft.Size = risk.PositionSize(acc.BalanceValue())
		s.Draft.EntryTime = e.now()
		s.State = StateEntryConfirmation
		return e.render(s, acc, ""), nil
	case AnswerReject:
		return e.abort(s, acc, coach.CategoryLoss,
			"✋ Опасно! Нет подтверждения\n\nРекомендация:\n• ⏳ Ждать четкого сигнала\n• 🔍 Искать другие возможности"), nil
	default:
		return e.invalid(s, acc), nil
	}
}

func (e *Engine) handleEntryConfirmation(ctx context.Context, s *Session, acc ledger.Account, in Input) (Reply, error) {
	switch in.Answer {
	case AnswerReject:
		s.Draft = nil
		s.State = StateMainMenu
		text := "🚫 Сделка отменена\n\n" + e.coach.Pick(coach.CategoryGeneral, e.coachContext(acc))
		return Reply{Text: text, Keyboard: menuOnlyKeyboard()}, nil
	case AnswerAccept:
		if s.Draft == nil {
			s.State = StateMainMenu
			return e.render(s, acc, ""), nil
		}
		if _, open := acc.OpenTrade(); open {
			// A trade was already written for this run (back edge from
			// TradeResult); do not write another.
			s.State = StateTradeResult
			return renderTradeOpened(), nil
		}
		trade := ledger.Trade{
			TradeID:       uuid.NewString(),
			Symbol:        s.Draft.Symbol,
			Direction:     s.Draft.Direction,
			Emotion:       s.Draft.Emotion,
			Size:          s.Draft.Size,
			Status:        ledger.StatusOpen,
			EntryTime:     s.Draft.EntryTime,
			BalanceBefore: acc.BalanceValue(),
		}
		if trade.EntryTime.IsZero() {
			trade.EntryTime = e.now()
		}
		if err := e.store.Append(ctx, s.UserID, trade); err != nil {
			if errors.Is(err, ledger.ErrOpenTradeExists) {
				s.State = StateTradeResult
				return renderTradeOpened(), nil
			}
			return Reply{}, fmt.Errorf("workflow: append trade: %w", err)
		}
		logger.Infof("workflow: user %d opened %s %s size=%.2f",
			s.UserID, trade.Symbol, trade.Direction, trade.Size)
		s.State = StateTradeResult
		return renderTradeOpened(), nil
	default:
		return e.invalid(s, acc), nil
	}
}

func (e *Engine) handleTradeResult(ctx context.Context, s *Session, acc ledger.Account, in Input) (Reply, error) {
	if in.Answer != AnswerAccept && in.Answer != AnswerReject {
		return e.invalid(s, acc), nil
	}
	open, ok := acc.OpenTrade()
	if !ok {
		// Consistency error: outcome arrived but nothing is open. Tell the
		// user and fall back to the menu instead of failing the action.
		s.Draft = nil
		s.State = StateMainMenu
		menu := e.renderMainMenu(acc)
		menu.Text = "⚠️ Не найдено открытых сделок\n\n" + menu.Text
		return menu, nil
	}

	win := in.Answer == AnswerAccept
	size := decimal.NewFromFloat(open.Size)
	var profitDec decimal.Decimal
	if win {
		profitDec = size.Mul(decimal.NewFromFloat(winPayoutRatio))
	} else {
		profitDec = size.Neg()
	}
	afterDec := decimal.NewFromFloat(acc.BalanceValue()).Add(profitDec)
	profit, _ := profitDec.Float64()
	after, _ := afterDec.Float64()

	result := ledger.ResultLoss
	if win {
		result = ledger.ResultProfit
	}
	close := ledger.TradeClose{
		Profit:       profit,
		BalanceAfter: after,
		ExitTime:     e.now(),
		Result:       result,
	}
	if err := e.store.CloseOpenTrade(ctx, s.UserID, close); err != nil {
		if errors.Is(err, ledger.ErrNoOpenTrade) {
			s.Draft = nil
			s.State = StateMainMenu
			menu := e.renderMainMenu(acc)
			menu.Text = "⚠️ Не найдено открытых сделок\n\n" + menu.Text
			return menu, nil
		}
		return Reply{}, fmt.Errorf("workflow: close trade: %w", err)
	}
	logger.Infof("workflow: user %d closed %s result=%s profit=%.2f balance=%.2f",
		s.UserID, open.Symbol, result, profit, after)

	s.Draft = nil
	s.State = StateMainMenu
	applyCloseLocally(&acc, close)
	return e.closeReport(acc, open.Size, profit, after, win), nil
}

// applyCloseLocally mirrors the persisted close on the already-loaded copy
// so the report's stats include the trade that just closed.
func applyCloseLocally(acc *ledger.Account, close ledger.TradeClose) {
	for i := len(acc.Trades) - 1; i >= 0; i-- {
		t := &acc.Trades[i]
		if t.Status != ledger.StatusOpen {
			continue
		}
		profit := close.Profit
		after := close.BalanceAfter
		exit := close.ExitTime
		t.Status = ledger.StatusClosed
		t.Profit = &profit
		t.BalanceAfter = &after
		t.ExitTime = &exit
		t.Result = close.Result
		acc.Balance = &after
		return
	}
}

func (e *Engine) closeReport(acc ledger.Account, size, profit, after float64, win bool) Reply {
	resultLine := "❌ Убыток"
	mark := "💪"
	cat := coach.CategoryLoss
	if win {
		resultLine = "✅ Прибыль"
		mark = "⭐"
		cat = coach.CategoryWin
	}
	amount := profit
	if amount < 0 {
		amount = -amount
	}
	nextSize := risk.PositionSize(after)
	pct := 0.0
	if after > 0 {
		pct = nextSize / after * 100
	}
	text := fmt.Sprintf(
		"📊 Отчет о сделке:\n\n"+
			"Результат: %s\n"+
			"Сумма: $%.2f\n"+
			"Размер позиции: $%.2f\n"+
			"Новый баланс: $%.2f\n\n"+
			"%s %s\n\n"+
			"🔍 Для следующей сделки:\n"+
			"Рекомендуемый размер позиции: $%.2f\n"+
			"Это %.1f%% от баланса",
		resultLine, amount, size, after,
		mark, e.coach.Pick(cat, e.coachContext(acc)),
		nextSize, pct,
	)
	return Reply{Text: text, Keyboard: menuOnlyKeyboard()}
}
