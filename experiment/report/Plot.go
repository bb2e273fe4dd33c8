// Package report renders the results of hyper-parameter sweeps as
// HTML learning curves and xlsx workbooks
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/samuelfneumann/tabular/experiment"
)

// Plot renders a page with the mean return and mean episode length of
// each result against the episode number
func Plot(w io.Writer, title string, results ...experiment.Result) error {
	if len(results) == 0 {
		return fmt.Errorf("plot: no results")
	}

	returns := curve(title, "Return", results,
		func(r experiment.Result) []float64 { return r.Returns })
	lengths := curve(title, "Episode Length", results,
		func(r experiment.Result) []float64 { return r.Lengths })

	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(returns, lengths)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	return nil
}

// SavePlot renders the plot of results to filename
func SavePlot(filename, title string, results ...experiment.Result) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("savePlot: %w", err)
	}
	defer f.Close()

	return Plot(f, title, results...)
}

// curve returns a line chart with one series per result
func curve(title, yName string, results []experiment.Result,
	data func(experiment.Result) []float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: yName}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Episode"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
	)

	episodes := 0
	for _, r := range results {
		if n := len(data(r)); n > episodes {
			episodes = n
		}
	}
	xAxis := make([]string, episodes)
	for i := range xAxis {
		xAxis[i] = fmt.Sprintf("%d", i+1)
	}
	line.SetXAxis(xAxis)

	for _, r := range results {
		values := data(r)
		items := make([]opts.LineData, len(values))
		for i, v := range values {
			items[i] = opts.LineData{Value: v}
		}
		line.AddSeries(seriesName(r), items)
	}
	return line
}

// seriesName returns the name of the series of a result
func seriesName(r experiment.Result) string {
	if r.Config == nil {
		return fmt.Sprintf("config %d", r.Index)
	}
	return fmt.Sprintf("%d: %v", r.Index, r.Config.Type())
}
