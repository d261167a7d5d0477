package report

import (
	"bytes"
	"fmt"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/aggregate"
)

// ChartRenderer draws summary tables as PNG images. An empty input
// yields nil bytes and no error.
type ChartRenderer interface {
	Pie(title string, slices []aggregate.DescriptionTotal) ([]byte, error)
	Bar(title string, buckets []aggregate.MonthBucket) ([]byte, error)
}

// Longest pie label before it is cut with an ellipsis.
const maxLabelRunes = 24

// GoChart renders charts with go-chart.
type GoChart struct {
	Width  int
	Height int
}

// NewGoChart returns a renderer producing width x height images.
func NewGoChart(width, height int) *GoChart {
	return &GoChart{Width: width, Height: height}
}

func (g *GoChart) Pie(title string, slices []aggregate.DescriptionTotal) ([]byte, error) {
	if len(slices) == 0 {
		return nil, nil
	}

	values := make([]chart.Value, 0, len(slices))
	for _, s := range slices {
		values = append(values, chart.Value{
			Label: truncate(s.Description, maxLabelRunes),
			Value: s.Total.InexactFloat64(),
		})
	}

	pie := chart.PieChart{
		Title:  title,
		Width:  g.Width,
		Height: g.Height,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering pie chart: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *GoChart) Bar(title string, buckets []aggregate.MonthBucket) ([]byte, error) {
	if len(buckets) == 0 {
		return nil, nil
	}

	maxTotal := 0.0
	bars := make([]chart.Value, 0, len(buckets))
	for _, b := range buckets {
		v := b.Total.InexactFloat64()
		if v > maxTotal {
			maxTotal = v
		}
		color := drawing.ColorFromHex(strings.TrimPrefix(b.Color, "#"))
		bars = append(bars, chart.Value{
			Label: b.MonthLabel,
			Value: v,
			Style: chart.Style{FillColor: color, StrokeColor: color},
		})
	}

	bar := chart.BarChart{
		Title:      title,
		Width:      g.Width,
		Height:     g.Height,
		BarWidth:   g.Width / (2*len(bars) + 1),
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis: chart.YAxis{
			// a fixed range keeps single-bar charts renderable
			Range: &chart.ContinuousRange{Min: 0, Max: maxTotal * 1.1},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := bar.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering bar chart: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
