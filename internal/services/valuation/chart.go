package valuation

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/models"
)

var (
	positiveColor  = drawing.ColorFromHex("16a34a") // green-600
	negativeColor  = drawing.ColorFromHex("dc2626") // red-600
	benchmarkColor = drawing.ColorFromHex("9ca3af") // gray-400
)

// RenderChart renders a series as a PNG line chart: portfolio value coloured by
// trend, and the normalized benchmark dashed where it has data. The y-axis is
// pinned to the summary's axis domain.
func RenderChart(series *models.ChartSeries, width, height int) ([]byte, error) {
	if series == nil || len(series.Points) < 2 {
		n := 0
		if series != nil {
			n = len(series.Points)
		}
		return nil, fmt.Errorf("need at least 2 data points, got %d", n)
	}
	if width <= 0 {
		width = 900
	}
	if height <= 0 {
		height = 400
	}

	xValues := make([]time.Time, len(series.Points))
	yValues := make([]float64, len(series.Points))
	var benchX []time.Time
	var benchY []float64
	for i, p := range series.Points {
		xValues[i] = p.Time
		yValues[i] = p.Value
		if p.Benchmark != nil {
			benchX = append(benchX, p.Time)
			benchY = append(benchY, *p.Benchmark)
		}
	}

	stroke := positiveColor
	if series.Summary.Trend == models.TrendNegative {
		stroke = negativeColor
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s (%s)", series.PortfolioID, series.Range),
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return axisTimeLabel(chart.TimeFromFloat64(t), series.Range)
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.1fk", f/1000)
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Portfolio Value",
				Style:   chart.Style{StrokeColor: stroke, StrokeWidth: 2.5},
				XValues: xValues,
				YValues: yValues,
			},
		},
	}

	if axis := series.Summary.Axis; !axis.Auto {
		lo, hi := axis.Min, axis.Max
		if lo == hi {
			lo, hi = lo-1, hi+1
		}
		graph.YAxis.Range = &chart.ContinuousRange{Min: lo, Max: hi}
	}

	if len(benchX) >= 2 {
		name := "Benchmark"
		if series.Summary.BenchmarkTicker != "" {
			name = series.Summary.BenchmarkTicker
		}
		graph.Series = append(graph.Series, chart.TimeSeries{
			Name: name,
			Style: chart.Style{
				StrokeColor:     benchmarkColor,
				StrokeWidth:     1.5,
				StrokeDashArray: []float64{5.0, 3.0},
			},
			XValues: benchX,
			YValues: benchY,
		})
		graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

func axisTimeLabel(t time.Time, rng models.TimeRange) string {
	switch rng {
	case models.Range1D:
		return t.Format("15:04")
	case models.Range1W:
		return t.Format("Mon")
	case models.Range1Y, models.RangeAll:
		return t.Format("Jan 06")
	default:
		return t.Format("Jan 2")
	}
}
