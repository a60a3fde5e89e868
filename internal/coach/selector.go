// Package coach picks and formats motivational feedback for the trader.
// Selection is uniform-random within a pool; the only contract is that a
// non-empty pool always yields a string.
package coach

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Category selects the message pool.
type Category int

const (
	CategoryGeneral Category = iota
	CategoryWin
	CategoryLoss
)

// Context carries the values the templates interpolate.
type Context struct {
	Balance    float64
	WinRate    float64 // percent
	LastProfit float64 // signed profit of the last closed trade
	TradeCount int
}

type Selector struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSelector seeds from the clock.
func NewSelector() *Selector {
	return NewSelectorWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewSelectorWithRand allows deterministic selection in tests.
func NewSelectorWithRand(rnd *rand.Rand) *Selector {
	return &Selector{rnd: rnd}
}

// Pick returns a formatted message from the category's pool. Win and loss
// categories fall back to general when the journal is still empty.
func (s *Selector) Pick(cat Category, ctx Context) string {
	if ctx.TradeCount == 0 && cat != CategoryGeneral {
		cat = CategoryGeneral
	}
	var pool []string
	switch cat {
	case CategoryWin:
		pool = winMessages
	case CategoryLoss:
		pool = lossMessages
	default:
		pool = generalMessages
	}
	tmpl := s.choose(pool)
	return s.interpolate(tmpl, ctx)
}

// Quote returns a plain motivational quote from the general pool.
func (s *Selector) Quote() string {
	return s.choose(generalMessages)
}

func (s *Selector) choose(pool []string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pool[s.rnd.Intn(len(pool))]
}

func (s *Selector) interpolate(tmpl string, ctx Context) string {
	loss := ctx.LastProfit
	if loss < 0 {
		loss = -loss
	}
	r := strings.NewReplacer(
		"{profit}", fmt.Sprintf("%.2f", ctx.LastProfit),
		"{loss}", fmt.Sprintf("%.2f", loss),
		"{win_rate}", fmt.Sprintf("%.1f", ctx.WinRate),
		"{balance}", fmt.Sprintf("%.2f", ctx.Balance),
		"{motivation_quote}", s.Quote(),
	)
	return r.Replace(tmpl)
}
