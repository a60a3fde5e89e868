// Package risk maps an account balance to a recommended position size via a
// progressive tier table: the bigger the account, the smaller the fraction
// put at risk per trade.
package risk

import (
	"math"

	"github.com/shopspring/decimal"
)

// Tier is one [Min,Max) balance bracket with its risk fraction.
type Tier struct {
	Min      float64
	Max      float64
	Fraction float64
}

// Tiers covers [0,∞) with no gaps or overlaps; fractions strictly decrease
// as the bracket rises. The values are a compatibility contract.
var Tiers = []Tier{
	{0, 150, 0.05},
	{150, 350, 0.04},
	{350, 1000, 0.03},
	{1000, 5000, 0.02},
	{5000, math.Inf(1), 0.01},
}

// fallbackFraction applies when the balance lands outside every bracket,
// which cannot happen for non-negative balances but keeps the function total.
const fallbackFraction = 0.01

// TierFraction returns the risk fraction for balance.
func TierFraction(balance float64) float64 {
	for _, t := range Tiers {
		if balance >= t.Min && balance < t.Max {
			return t.Fraction
		}
	}
	return fallbackFraction
}

// PositionSize returns balance * tier fraction. The caller guarantees a
// non-negative balance; the multiplication goes through decimal so boundary
// values like 150*0.04 come out exact.
func PositionSize(balance float64) float64 {
	frac := TierFraction(balance)
	size := decimal.NewFromFloat(balance).Mul(decimal.NewFromFloat(frac))
	f, _ := size.Float64()
	return f
}
