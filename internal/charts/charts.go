// Package charts renders interactive go-echarts pages for a profile.
package charts

import (
	"fmt"
	"io"

	"rift-rewind/internal/domain"
	"rift-rewind/internal/normalize"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title    string
	Subtitle string
	Width    string
	Height   string
	Theme    string
	Colors   []string
}

// DefaultChartConfig matches the dashboard's dark theme.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:  "600px",
		Height: "500px",
		Theme:  "dark",
		Colors: []string{"#8B5CF6", "#EC4899", "#FAC858", "#73C0DE", "#3BA272", "#FC8452"},
	}
}

// RadarSeries is one named set of six metrics.
type RadarSeries struct {
	Name    string
	Metrics []domain.Metric
}

func (c ChartConfig) global() []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Width:  c.Width,
			Height: c.Height,
			Theme:  c.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    c.Title,
			Subtitle: c.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
		}),
	}
}

func (c ChartConfig) color(i int) string {
	if len(c.Colors) == 0 {
		return ""
	}
	return c.Colors[i%len(c.Colors)]
}

// RenderRadar draws one or more metric series on shared hexagonal axes.
// Series with no metrics are skipped.
func RenderRadar(w io.Writer, series []RadarSeries, config ChartConfig) error {
	radar := charts.NewRadar()

	indicators := make([]*opts.Indicator, 0, len(normalize.MetricKeys))
	for _, m := range normalize.Metrics(nil, nil) {
		indicators = append(indicators, &opts.Indicator{Name: m.Metric, Max: 100})
	}

	radar.SetGlobalOptions(append(config.global(),
		charts.WithRadarComponentOpts(opts.RadarComponent{
			Indicator:   indicators,
			Shape:       "polygon",
			SplitNumber: 5,
		}),
	)...)

	drawn := 0
	for i, s := range series {
		if len(s.Metrics) == 0 {
			continue
		}
		radar.AddSeries(s.Name, []opts.RadarData{{Name: s.Name, Value: normalize.Values(s.Metrics)}},
			charts.WithItemStyleOpts(opts.ItemStyle{Color: config.color(i)}),
			charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.25)}),
		)
		drawn++
	}
	if drawn == 0 {
		return fmt.Errorf("no metric series to draw")
	}

	if err := radar.Render(w); err != nil {
		return fmt.Errorf("failed to render radar chart: %w", err)
	}
	return nil
}

// RenderMonthly draws wins and losses per month with KDA on the same axis.
func RenderMonthly(w io.Writer, months []domain.MonthlyProgress, config ChartConfig) error {
	if len(months) == 0 {
		return fmt.Errorf("no monthly progress to draw")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(append(config.global(),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)...)

	labels := make([]string, len(months))
	wins := make([]opts.LineData, len(months))
	losses := make([]opts.LineData, len(months))
	kda := make([]opts.LineData, len(months))
	for i, m := range months {
		labels[i] = m.Month
		wins[i] = opts.LineData{Value: m.Wins}
		losses[i] = opts.LineData{Value: m.Losses}
		kda[i] = opts.LineData{Value: m.KDA}
	}

	line.SetXAxis(labels).
		AddSeries("Wins", wins, charts.WithItemStyleOpts(opts.ItemStyle{Color: config.color(4)})).
		AddSeries("Losses", losses, charts.WithItemStyleOpts(opts.ItemStyle{Color: config.color(1)})).
		AddSeries("KDA", kda, charts.WithItemStyleOpts(opts.ItemStyle{Color: config.color(2)})).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
		)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render monthly chart: %w", err)
	}
	return nil
}

// RenderRoles draws the role distribution as a pie.
func RenderRoles(w io.Writer, roles []domain.RoleShare, config ChartConfig) error {
	if len(roles) == 0 {
		return fmt.Errorf("no role distribution to draw")
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(config.global()...)

	data := make([]opts.PieData, 0, len(roles))
	for _, r := range roles {
		data = append(data, opts.PieData{Name: r.Role, Value: r.Value})
	}

	pie.AddSeries("Roles", data).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {c}%"}),
		)

	if err := pie.Render(w); err != nil {
		return fmt.Errorf("failed to render role chart: %w", err)
	}
	return nil
}
