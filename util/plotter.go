package util

import (
	"fmt"
	"io"

	"dine-server/models"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderRatingsChart writes an HTML bar chart of the restaurants' ratings to w.
func RenderRatingsChart(w io.Writer, restaurants []models.Restaurant) error {
	names := make([]string, 0, len(restaurants))
	ratings := make([]opts.BarData, 0, len(restaurants))
	reviews := make([]opts.BarData, 0, len(restaurants))
	for _, r := range restaurants {
		names = append(names, r.Name)
		ratings = append(ratings, opts.BarData{Value: fmt.Sprintf("%.2f", r.Rating)})
		reviews = append(reviews, opts.BarData{Value: r.Reviews})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Search Results",
			Width:     "900px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Restaurant ratings",
			Subtitle: fmt.Sprintf("%d results", len(restaurants)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	bar.SetXAxis(names).
		AddSeries("Rating", ratings).
		AddSeries("Reviews", reviews,
			charts.WithLabelOpts(opts.Label{
				Show:      opts.Bool(true),
				Formatter: "{c}",
			}),
		)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
