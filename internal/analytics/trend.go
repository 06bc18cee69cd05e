package analytics

import "gonum.org/v1/gonum/stat"

// Predictor forecasts the value following an ordered series.
type Predictor interface {
	PredictNext(values []float64) float64
}

// LinearTrend fits an ordinary least-squares line over the series positions
// 0..n-1 and evaluates it at n.
type LinearTrend struct{}

func (LinearTrend) PredictNext(values []float64) float64 {
	switch len(values) {
	case 0:
		return 0
	case 1:
		return values[0]
	}

	xs := make([]float64, len(values))
	for i := range xs {
		xs[i] = float64(i)
	}

	intercept, slope := stat.LinearRegression(xs, values, nil, false)
	return intercept + slope*float64(len(values))
}
