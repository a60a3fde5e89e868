package coach

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestSelector() *Selector {
	return NewSelectorWithRand(rand.New(rand.NewSource(1)))
}

func TestPickResolvesAllPlaceholders(t *testing.T) {
	s := newTestSelector()
	ctx := Context{Balance: 118.8, WinRate: 66.7, LastProfit: 4.8, TradeCount: 3}
	for _, cat := range []Category{CategoryGeneral, CategoryWin, CategoryLoss} {
		for i := 0; i < 50; i++ {
			msg := s.Pick(cat, ctx)
			assert.NotEmpty(t, msg)
			assert.NotContains(t, msg, "{")
			assert.NotContains(t, msg, "}")
		}
	}
}

func TestPickFallsBackToGeneralOnEmptyJournal(t *testing.T) {
	s := newTestSelector()
	ctx := Context{Balance: 120, TradeCount: 0}
	for i := 0; i < 50; i++ {
		msg := s.Pick(CategoryWin, ctx)
		assert.Contains(t, generalMessages, msg)
		msg = s.Pick(CategoryLoss, ctx)
		assert.Contains(t, generalMessages, msg)
	}
}

func TestPickUsesAbsoluteLoss(t *testing.T) {
	s := NewSelectorWithRand(rand.New(rand.NewSource(7)))
	ctx := Context{Balance: 114, WinRate: 0, LastProfit: -6, TradeCount: 1}
	seenLossAmount := false
	for i := 0; i < 200; i++ {
		msg := s.Pick(CategoryLoss, ctx)
		assert.NotContains(t, msg, "$-")
		if strings.Contains(msg, "$6.00") {
			seenLossAmount = true
		}
	}
	assert.True(t, seenLossAmount, "loss templates should surface the absolute loss amount")
}

func TestQuoteComesFromGeneralPool(t *testing.T) {
	s := newTestSelector()
	for i := 0; i < 20; i++ {
		assert.Contains(t, generalMessages, s.Quote())
	}
}
