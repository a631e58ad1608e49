package snapshot

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/corelabs/core/internal/models"
)

// RenderHistoryChart renders a history series as a PNG line chart. Requires
// at least two points — go-chart cannot scale a single-point axis.
func RenderHistoryChart(title string, points []models.HistoryPoint) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("history chart needs at least 2 points, got %d", len(points))
	}

	xs := make([]time.Time, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		day, err := time.Parse(models.SnapshotDay, p.Day)
		if err != nil {
			return nil, fmt.Errorf("parse history day %q: %w", p.Day, err)
		}
		xs[i] = day
		ys[i] = p.TotalUSD
	}

	graph := chart.Chart{
		Title:  title,
		Width:  900,
		Height: 400,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "Total (USD)",
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "portfolio value",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeWidth: 2.0,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render history chart: %w", err)
	}
	return buf.Bytes(), nil
}
