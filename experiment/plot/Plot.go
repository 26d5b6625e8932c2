// Package plot exports training curves as interactive HTML charts
package plot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/samuelfneumann/snakeql/experiment"
)

// Series is a single named curve
type Series struct {
	Name   string
	Values []float64
}

// Line returns a line chart with one line per series. Point i of each
// line is drawn at x-axis label i+1 scaled by every, so that block
// averages are placed at the episode which ends their block.
func Line(title string, every int, series ...Series) *charts.Line {
	if every < 1 {
		every = 1
	}

	points := 0
	for _, s := range series {
		if len(s.Values) > points {
			points = len(s.Values)
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("mean score per %d episodes", every),
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "episode"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "score"}),
	)

	episodes := make([]string, 0, points)
	for i := 0; i < points; i++ {
		episodes = append(episodes, fmt.Sprintf("%d", (i+1)*every))
	}
	line.SetXAxis(episodes)

	for _, s := range series {
		items := make([]opts.LineData, 0, len(s.Values))
		for _, v := range s.Values {
			items = append(items, opts.LineData{Value: v})
		}
		line.AddSeries(s.Name, items)
	}
	return line
}

// Phases returns one series of block averages per curriculum phase
func Phases(results []experiment.PhaseResult) []Series {
	series := make([]Series, 0, len(results))
	for _, r := range results {
		series = append(series, Series{r.Phase, r.BlockAverages})
	}
	return series
}

// Save renders a page holding a line chart of series to path
func Save(path, title string, every int, series ...Series) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save: %w", err)
	}

	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(Line(title, every, series...))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("save: could not render chart: %w", err)
	}
	return f.Close()
}
