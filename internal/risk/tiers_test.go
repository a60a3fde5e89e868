package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierFractionBrackets(t *testing.T) {
	cases := []struct {
		name    string
		balance float64
		want    float64
	}{
		{"zero balance", 0, 0.05},
		{"just below first boundary", 149.99, 0.05},
		{"first boundary belongs to next tier", 150, 0.04},
		{"mid second tier", 200, 0.04},
		{"second boundary", 350, 0.03},
		{"just below third boundary", 999.99, 0.03},
		{"third boundary", 1000, 0.02},
		{"just below top tier", 4999.99, 0.02},
		{"top tier start", 5000, 0.01},
		{"very large balance", 1e9, 0.01},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TierFraction(tc.balance))
		})
	}
}

func TestTierFractionFallback(t *testing.T) {
	// Negative balances land outside every bracket.
	assert.Equal(t, fallbackFraction, TierFraction(-1))
}

func TestPositionSizeBoundariesExact(t *testing.T) {
	assert.Equal(t, 6.0, PositionSize(150))
	assert.Equal(t, 6.0, PositionSize(120))
	assert.Equal(t, 10.5, PositionSize(350))
	assert.Equal(t, 20.0, PositionSize(1000))
	assert.Equal(t, 50.0, PositionSize(5000))
}

func TestPositionSizeBelowBoundaryUsesLowerTier(t *testing.T) {
	assert.InDelta(t, 149.999*0.05, PositionSize(149.999), 1e-9)
}

func TestTiersCoverWithoutGaps(t *testing.T) {
	for i := 1; i < len(Tiers); i++ {
		assert.Equal(t, Tiers[i-1].Max, Tiers[i].Min, "tier %d must start where tier %d ends", i, i-1)
		assert.Less(t, Tiers[i].Fraction, Tiers[i-1].Fraction, "fractions must strictly decrease")
	}
	assert.Equal(t, 0.0, Tiers[0].Min)
}
