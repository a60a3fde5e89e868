package coach

// Message pools for the three outcome categories. Templates may reference
// {profit}, {loss}, {win_rate}, {balance} and {motivation_quote}; the quote
// is always drawn from the general pool.

var winMessages = []string{
	"🎯 Блестяще! Ты только что заработал ${profit}!",
	"🚀 Космическая прибыль! +${profit} к балансу!",
	"🏆 Идеальный вход! Твой винрейт: {win_rate}%",
	"💸 Прибыль как по учебнику! {motivation_quote}",
	"💰 Финансовый снайпер! Баланс: ${balance}",
}

var lossMessages = []string{
	"🛡️ Не сдавайся! ${loss} - это просто ступенька к успеху",
	"🌧️ Временная неудача. Твой винрейт: {win_rate}%",
	"🔥 Ценный урок! Помни: '{motivation_quote}'",
	"🚧 Всего одна сделка из многих. Баланс: ${balance}",
	"🌱 Каждая потеря ${loss} - семя будущей победы",
}

var generalMessages = []string{
	"💡 Успешная торговля — это 20% стратегия и 80% психология",
	"🧠 Дисциплина важнее, чем предсказание рынка",
	"⚖️ Рискуй только тем, что готов потерять",
	"📈 Тренд — твой лучший друг",
	"🔍 Анализируй, планируй, исполняй",
}
