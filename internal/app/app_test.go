package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecoach/internal/config"
	"tradecoach/internal/gateway/telegram"
	"tradecoach/internal/ledger"
	"tradecoach/internal/workflow"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := &config.Config{}
	a, err := New(cfg)
	require.NoError(t, err)
	return a
}

func TestNewUsesMemoryStoreWithoutPath(t *testing.T) {
	a := newTestApp(t)
	_, ok := a.store.(*ledger.MemoryStore)
	assert.True(t, ok)
	assert.Nil(t, a.client, "telegram disabled means no client")
}

func TestMapInputMatchesLastKeyboard(t *testing.T) {
	a := newTestApp(t)
	sess := &workflow.Session{UserID: 7, State: workflow.StateMainMenu}
	kb := [][]workflow.Button{
		{{Label: "🎯 Новая сделка", Input: workflow.Input{Menu: workflow.MenuNewTrade}}},
		{{Label: "🏠 Главное меню", Input: workflow.Input{Answer: workflow.AnswerMainMenu}}},
	}
	a.setKeyboard(7, kb)

	in := a.mapInput(7, sess, "🎯 Новая сделка")
	assert.Equal(t, workflow.MenuNewTrade, in.Menu)

	in = a.mapInput(7, sess, "🏠 Главное меню")
	assert.Equal(t, workflow.AnswerMainMenu, in.Answer)

	// Free text in a keyboard state maps to nothing.
	in = a.mapInput(7, sess, "hello")
	assert.Equal(t, workflow.Input{}, in)
}

func TestMapInputFreeTextStates(t *testing.T) {
	a := newTestApp(t)
	sess := &workflow.Session{UserID: 7, State: workflow.StateSymbolEntry}
	in := a.mapInput(7, sess, "BTCUSDT")
	assert.Equal(t, "BTCUSDT", in.Text)

	sess.State = workflow.StateSetBalance
	in = a.mapInput(7, sess, "120")
	assert.Equal(t, "120", in.Text)
}

func TestBuildMarkupConvertsKeyboard(t *testing.T) {
	a := newTestApp(t)
	reply := workflow.Reply{Keyboard: [][]workflow.Button{
		{{Label: "A"}, {Label: "B", Input: workflow.Input{Answer: workflow.AnswerReject}}},
		{{Label: "C"}},
	}}
	markup := a.buildMarkup(5, reply)
	rk, ok := markup.(telegram.ReplyKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, rk.Keyboard, 2)
	assert.Equal(t, "A", rk.Keyboard[0][0].Text)
	assert.Equal(t, "C", rk.Keyboard[1][0].Text)
	assert.True(t, rk.ResizeKeyboard)

	// The keyboard is remembered for the next mapInput.
	sess := &workflow.Session{UserID: 5, State: workflow.StateMainMenu}
	in := a.mapInput(5, sess, "B")
	assert.Equal(t, workflow.AnswerReject, in.Answer)
}

func TestBuildMarkupRemoveKeyboard(t *testing.T) {
	a := newTestApp(t)
	a.setKeyboard(5, [][]workflow.Button{{{Label: "A"}}})

	markup := a.buildMarkup(5, workflow.Reply{RemoveKeyboard: true})
	rm, ok := markup.(telegram.ReplyKeyboardRemove)
	require.True(t, ok)
	assert.True(t, rm.RemoveKeyboard)
	assert.Nil(t, a.lastKeyboard(5))
}

func TestBuildMarkupEmptyKeyboard(t *testing.T) {
	a := newTestApp(t)
	assert.Nil(t, a.buildMarkup(5, workflow.Reply{Text: "plain"}))
}

func TestRunRequiresTelegram(t *testing.T) {
	a := newTestApp(t)
	err := a.Run(context.Background())
	assert.Error(t, err)
}
