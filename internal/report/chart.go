package report

import (
	"errors"
	"fmt"

	charts "github.com/vicanso/go-charts/v2"

	"energy-service/internal/models"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no billing history to chart")

type ChartGenerator struct {
	theme  string
	width  int
	height int
}

func NewChartGenerator() *ChartGenerator {
	return &ChartGenerator{
		theme:  "light",
		width:  1000,
		height: 400,
	}
}

// BillHistoryPNG renders bill amount and billed units per period.
// Points must already be in recording order.
func (cg *ChartGenerator) BillHistoryPNG(points []models.DashboardPoint) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}

	labels := make([]string, len(points))
	amounts := make([]float64, len(points))
	units := make([]float64, len(points))
	for i, p := range points {
		labels[i] = p.PeriodLabel
		amounts[i] = p.BillAmount
		units[i] = p.TotalUnits
	}

	p, err := charts.LineRender(
		[][]float64{amounts, units},
		charts.PNGTypeOption(),
		charts.TitleTextOptionFunc("Billing History"),
		charts.XAxisDataOptionFunc(labels),
		charts.LegendLabelsOptionFunc([]string{"Bill amount", "Units (kWh)"}, charts.PositionRight),
		charts.ThemeOptionFunc(cg.theme),
		charts.WidthOptionFunc(cg.width),
		charts.HeightOptionFunc(cg.height),
		charts.PaddingOptionFunc(charts.Box{
			Top:    20,
			Right:  20,
			Bottom: 20,
			Left:   20,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render bill history chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return buf, nil
}
