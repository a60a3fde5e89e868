package chart

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecoach/internal/stats"
)

func testPoints(n int) []stats.EquityPoint {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	points := make([]stats.EquityPoint, n)
	for i := range points {
		points[i] = stats.EquityPoint{
			Time:    base.Add(time.Duration(i) * time.Hour),
			Balance: 120 + float64(i),
		}
	}
	return points
}

func TestEquityChartRejectsTooFewPoints(t *testing.T) {
	r := NewRenderer(0)
	_, err := r.EquityChart(context.Background(), testPoints(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 2 points")
}

func TestBuildEquityHTML(t *testing.T) {
	html, err := buildEquityHTML(testPoints(3))
	require.NoError(t, err)
	s := string(html)
	assert.Contains(t, s, "История баланса")
	assert.Contains(t, s, "echarts")
	// Every point feeds the series.
	assert.Contains(t, s, "122")
}

func TestNewRendererDefaultTimeout(t *testing.T) {
	r := NewRenderer(0)
	assert.Equal(t, 20*time.Second, r.timeout)
	r = NewRenderer(5 * time.Second)
	assert.Equal(t, 5*time.Second, r.timeout)
}
