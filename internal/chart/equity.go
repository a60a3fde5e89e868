// Package chart renders the journal's equity curve to a PNG: a go-echarts
// line chart written to HTML and screenshotted by headless Chrome.
package chart

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"tradecoach/internal/stats"
)

const (
	colorBackground = "#060c1b"
	colorText       = "#eceff4"
	colorTextDim    = "#9ca3af"
	colorEquity     = "#34d399"

	chartWidthPx  = 900
	chartHeightPx = 480
)

type Renderer struct {
	timeout time.Duration
}

func NewRenderer(timeout time.Duration) *Renderer {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Renderer{timeout: timeout}
}

var (
	headlessOnce sync.Once
	headlessErr  error
)

// EnsureHeadlessAvailable probes for a usable headless Chrome once per
// process.
func EnsureHeadlessAvailable(ctx context.Context) error {
	headlessOnce.Do(func() {
		if ctx == nil {
			ctx = context.Background()
		}
		parent, cancel := chromedp.NewContext(ctx)
		if cancel != nil {
			defer cancel()
		}
		headlessErr = chromedp.Run(parent)
	})
	return headlessErr
}

// EquityChart renders the balance-after-each-trade series. The caller only
// asks for it with at least two points; fewer is still rejected here.
func (r *Renderer) EquityChart(ctx context.Context, points []stats.EquityPoint) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("chart: equity curve needs at least 2 points, got %d", len(points))
	}
	if err := EnsureHeadlessAvailable(ctx); err != nil {
		return nil, fmt.Errorf("chart: headless chrome unavailable: %w", err)
	}
	html, err := buildEquityHTML(points)
	if err != nil {
		return nil, err
	}
	return r.renderHTMLToPNG(ctx, html, chartWidthPx, chartHeightPx)
}

func buildEquityHTML(points []stats.EquityPoint) ([]byte, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           types.ThemeWesteros,
			Width:           fmt.Sprintf("%dpx", chartWidthPx),
			Height:          fmt.Sprintf("%dpx", chartHeightPx),
			BackgroundColor: colorBackground,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:      "📈 История баланса",
			Left:       "left",
			Top:        "10",
			TitleStyle: &opts.TextStyle{Color: colorText, FontSize: 16},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      "Номер сделки",
			AxisLabel: &opts.AxisLabel{Color: colorTextDim},
			SplitLine: &opts.SplitLine{Show: opts.Bool(false)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      "Баланс ($)",
			Scale:     opts.Bool(true),
			AxisLabel: &opts.AxisLabel{Color: colorTextDim},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextDim, Opacity: opts.Float(0.2)}},
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	)

	x := make([]string, len(points))
	data := make([]opts.LineData, len(points))
	for i, p := range points {
		x[i] = fmt.Sprintf("%d", i+1)
		data[i] = opts.LineData{Value: p.Balance}
	}
	line.SetXAxis(x)
	line.AddSeries("Баланс", data,
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorEquity, Width: 2}),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true), Smooth: opts.Bool(false)}),
	)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return nil, fmt.Errorf("chart: render html: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) renderHTMLToPNG(ctx context.Context, html []byte, width, height int) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	parent, cancel := chromedp.NewContext(ctx)
	defer cancel()

	timeoutCtx, cancelTimeout := context.WithTimeout(parent, r.timeout)
	defer cancelTimeout()

	dataURI := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html)
	var screenshot []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(dataURI),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(800 * time.Millisecond),
		chromedp.FullScreenshot(&screenshot, 0),
	}
	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		return nil, fmt.Errorf("chart: screenshot: %w", err)
	}
	return screenshot, nil
}
