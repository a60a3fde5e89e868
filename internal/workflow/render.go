package workflow

import (
	"fmt"
	"strings"
	"time"

	"tradecoach/internal/coach"
	"tradecoach/internal/ledger"
	"tradecoach/internal/risk"
	"tradecoach/internal/stats"
)

const journalTailLen = 5

var (
	btnMainMenu = Button{Label: "🏠 Главное меню", Input: Input{Answer: AnswerMainMenu}}
	btnBack     = Button{Label: "🔙 Назад", Input: Input{Answer: AnswerBack}}

	navRow      = []Button{btnBack, btnMainMenu}
	menuOnlyRow = []Button{btnMainMenu}
)

func menuOnlyKeyboard() [][]Button { return [][]Button{menuOnlyRow} }

func mainMenuKeyboard() [][]Button {
	return [][]Button{
		{
			{Label: "🎯 Новая сделка", Input: Input{Menu: MenuNewTrade}},
			{Label: "📊 История сделок", Input: Input{Menu: MenuJournal}},
		},
		{
			{Label: "💰 Мой баланс", Input: Input{Menu: MenuBalance}},
			{Label: "💡 Мотивация", Input: Input{Menu: MenuMotivation}},
		},
	}
}

func emotionKeyboard() [][]Button {
	return [][]Button{
		{
			{Label: "😊 Спокоен", Input: Input{Emotion: ledger.EmotionCalm}},
			{Label: "😐 Нейтрален", Input: Input{Emotion: ledger.EmotionNeutral}},
		},
		{
			{Label: "😰 Взволнован", Input: Input{Emotion: ledger.EmotionAnxious}},
			{Label: "😡 Эмоционален", Input: Input{Emotion: ledger.EmotionEmotional}},
		},
		menuOnlyRow,
	}
}

func directionKeyboard() [][]Button {
	return [][]Button{
		{
			{Label: "📈 Лонг", Input: Input{Direction: ledger.DirectionLong}},
			{Label: "📉 Шорт", Input: Input{Direction: ledger.DirectionShort}},
		},
		navRow,
	}
}

// gateKeyboard builds the ✅/❌ row for a checklist gate.
func gateKeyboard(yes, no string) [][]Button {
	return [][]Button{
		{
			{Label: yes, Input: Input{Answer: AnswerAccept}},
			{Label: no, Input: Input{Answer: AnswerReject}},
		},
		navRow,
	}
}

func directionWord(d ledger.Direction) string {
	if d == ledger.DirectionShort {
		return "Шорт"
	}
	return "Лонг"
}

// sessionBanner names the active trading session by UTC hour.
func sessionBanner(now time.Time) string {
	switch hour := now.UTC().Hour(); {
	case hour < 6:
		return "🌏 Сейчас азиатская сессия - обычно низкая волатильность"
	case hour < 12:
		return "🌍 Сейчас европейская сессия - волатильность нарастает"
	case hour < 18:
		return "🌎 Сейчас американская сессия - высокая волатильность!"
	default:
		return "🌙 Вечерняя сессия - волатильность снижается"
	}
}

// render produces the prompt for the session's current state, prefixed with
// note when re-prompting after invalid input.
func (e *Engine) render(s *Session, acc ledger.Account, note string) Reply {
	var r Reply
	switch s.State {
	case StateSetBalance:
		r = Reply{Text: "Введи сумму стартового депозита (в USD):", RemoveKeyboard: true}
	case StateMainMenu:
		r = e.renderMainMenu(acc)
	case StateEmotionCheck:
		r = e.renderEmotionCheck()
	case StatePlanCheck:
		r = renderPlanCheck()
	case StateSymbolEntry:
		r = renderSymbolEntry()
	case StateDirectionSelect:
		r = renderDirectionSelect()
	case StateExtremumCheck:
		r = renderExtremumCheck(s.draftDirection())
	case StateLiquidityZoneCheck:
		r = renderLiquidityZoneCheck(s.draftDirection())
	case StateBreakoutCheck:
		r = renderBreakoutCheck()
	case StateBounceConfirmationCheck:
		r = renderBounceConfirmationCheck()
	case StateEntryConfirmation:
		r = e.renderEntryConfirmation(s, acc)
	case StateTradeResult:
		r = renderTradeOpened()
	default:
		r = e.renderMainMenu(acc)
	}
	if note != "" {
		r.Text = note + "\n\n" + r.Text
	}
	return r
}

func (s *Session) draftDirection() ledger.Direction {
	if s.Draft == nil {
		return ledger.DirectionLong
	}
	return s.Draft.Direction
}

func (e *Engine) renderMainMenu(acc ledger.Account) Reply {
	balance := acc.BalanceValue()
	text := fmt.Sprintf(
		"💼 Твой баланс: $%.2f\n🎯 Рекомендуемый размер позиции: $%.2f\n\nВыбери действие:",
		balance, risk.PositionSize(balance),
	)
	return Reply{Text: text, Keyboard: mainMenuKeyboard()}
}

func (e *Engine) renderEmotionCheck() Reply {
	text := fmt.Sprintf(
		"🧠 ШАГ 1 из 8: Твое состояние\n\n%s\n\nКак ты себя чувствуешь перед сделкой?\n\n"+
			"📌 Совет: Если ты взволнован или эмоционален, лучше отложи торговлю.",
		sessionBanner(e.now()),
	)
	return Reply{Text: text, Keyboard: emotionKeyboard()}
}

func renderPlanCheck() Reply {
	text := "📋 ШАГ 2 из 8: Проверка плана\n\n" +
		"Проверил ли ты эти ключевые моменты?\n\n" +
		"1. 📊 Определен ли тренд на старшем таймфрейме?\n" +
		"2. 💧 Видна ли ближайшая зона ликвидности?\n" +
		"3. ⚠️ Поставлен ли стоп-лосс?\n\n" +
		"Все ли готово для сделки?"
	return Reply{Text: text, Keyboard: gateKeyboard("✅ Да, все проверено", "❌ Нет, есть сомнения")}
}

func renderSymbolEntry() Reply {
	return Reply{
		Text:     "📌 В какой паре планируешь сделку?\n(Например: BTCUSDT или EURUSD)",
		Keyboard: [][]Button{navRow},
	}
}

func renderDirectionSelect() Reply {
	return Reply{Text: "📊 Какое направление выбираешь?", Keyboard: directionKeyboard()}
}

func renderExtremumCheck(d ledger.Direction) Reply {
	if d == ledger.DirectionShort {
		text := "📍 ШАГ 3 из 8: Поиск максимума\n\n" +
			"Видишь четкий максимум (вершину), от которого цена отскочила?\n\n" +
			"Нашел хороший уровень для входа в шорт?"
		return Reply{Text: text, Keyboard: gateKeyboard("✅ Да, вижу максимум", "❌ Не вижу максимума")}
	}
	text := "📍 ШАГ 3 из 8: Поиск минимума\n\n" +
		"Видишь четкий минимум (дно), от которого цена отскочила?\n\n" +
		"Нашел хороший уровень для входа в лонг?"
	return Reply{Text: text, Keyboard: gateKeyboard("✅ Да, вижу минимум", "❌ Не вижу минимума")}
}

func renderLiquidityZoneCheck(d ledger.Direction) Reply {
	zone := "Ищешь область НИЖЕ минимума, где могут быть стоп-лоссы?"
	if d == ledger.DirectionShort {
		zone = "Ищешь область ВЫШЕ максимума, где могут быть стоп-лоссы?"
	}
	text := "💧 ШАГ 4 из 8: Зона ликвидности\n\n" + zone + "\n\nНашел зону ликвидности?"
	return Reply{Text: text, Keyboard: gateKeyboard("✅ Да, вижу зону", "❌ Нет, не вижу")}
}

func renderBreakoutCheck() Reply {
	text := "💥 ШАГ 5 из 8: Пробой ликвидности\n\n" +
		"Цена пробила зону ликвидности и быстро вернулась?\n\n" +
		"Был ли такой пробой?"
	return Reply{Text: text, Keyboard: gateKeyboard("✅ Да, был пробой", "❌ Нет, не было")}
}

func renderBounceConfirmationCheck() Reply {
	text := "🔄 ШАГ 6 из 8: Подтверждение отскока\n\n" +
		"Цена отскочила от уровня и пошла в нужном направлении?\n\n" +
		"Есть подтверждение?"
	return Reply{Text: text, Keyboard: gateKeyboard("✅ Да, есть подтверждение", "❌ Нет, нет подтверждения")}
}

// renderEntryConfirmation recomputes the size from the current balance, so
// walking back in from TradeResult is safe and idempotent while no trade
// has been written yet.
func (e *Engine) renderEntryConfirmation(s *Session, acc ledger.Account) Reply {
	balance := acc.BalanceValue()
	size := risk.PositionSize(balance)
	if s.Draft != nil {
		s.Draft.Size = size
	}
	pct := 0.0
	if balance > 0 {
		pct = size / balance * 100
	}
	text := fmt.Sprintf(
		"🎉 ШАГ 7 из 8: Подтверждение сделки!\n\n"+
			"📊 Все условия выполнены для входа в %s!\n\n"+
			"💵 Размер позиции: $%.2f\n"+
			"📈 Это %.1f%% от баланса\n\n"+
			"Подтверждаешь вход?",
		directionWord(s.draftDirection()), size, pct,
	)
	return Reply{Text: text, Keyboard: gateKeyboard("✅ Подтверждаю вход", "❌ Отменить сделку")}
}

func renderTradeOpened() Reply {
	text := "📌 Сделка открыта! Жду результата...\n\nКак закроешь сделку, сообщи результат:"
	return Reply{Text: text, Keyboard: gateKeyboard("✅ Сделка в плюсе", "❌ Сделка в минусе")}
}

// renderJournal builds the trade-history view: last trades, the stats
// block, threshold-picked motivation.
func (e *Engine) renderJournal(acc ledger.Account) string {
	trades := acc.Trades
	var b strings.Builder
	b.WriteString("📋 Последние сделки:\n\n")
	tail := trades
	if len(tail) > journalTailLen {
		tail = tail[len(tail)-journalTailLen:]
	}
	for i, t := range tail {
		profit := 0.0
		if t.Profit != nil {
			profit = *t.Profit
		}
		result := "❌ Убыток"
		if profit > 0 {
			result = "✅ Прибыль"
		}
		date := "N/A"
		if t.ExitTime != nil {
			date = t.ExitTime.Format("2006-01-02 15:04")
		}
		amount := profit
		if amount < 0 {
			amount = -amount
		}
		fmt.Fprintf(&b, "%d. %s - %s\n   Результат: %s $%.2f\n   Дата: %s\n\n",
			i+1, t.Symbol, directionWord(t.Direction), result, amount, date)
	}
	sum := stats.Summarize(trades)
	fmt.Fprintf(&b,
		"📈 Статистика:\n   Всего сделок: %d\n   Прибыльных: %d | Убыточных: %d\n   Успешность: %.1f%%\n\n",
		sum.Total, sum.Wins, sum.Losses, stats.Round1(sum.WinRate),
	)
	cctx := e.coachContext(acc)
	switch {
	case sum.WinRate > 60:
		b.WriteString("⭐ Отличные результаты!\n" + e.coach.Pick(coach.CategoryWin, cctx))
	case sum.WinRate < 40:
		b.WriteString("💪 Продолжай работать!\n" + e.coach.Pick(coach.CategoryLoss, cctx))
	default:
		b.WriteString(e.coach.Pick(coach.CategoryGeneral, cctx))
	}
	return b.String()
}
