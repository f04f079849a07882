package dashboard

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ChartSeries is the numeric series handed to the rendering layer: one label
// per currency code and the matching rate values, in stable sorted order.
type ChartSeries struct {
	Labels []string          `json:"labels"`
	Values []decimal.Decimal `json:"values"`
}

// BuildSeries derives a chart series from an exchange-rate table.
func BuildSeries(rates RateTable) ChartSeries {
	labels := make([]string, 0, len(rates))
	for code := range rates {
		labels = append(labels, code)
	}
	sort.Strings(labels)

	values := make([]decimal.Decimal, len(labels))
	for i, code := range labels {
		values[i] = rates[code]
	}
	return ChartSeries{Labels: labels, Values: values}
}

// ChartHandle scopes one live chart instance on the external rendering
// surface. The surface is stateful, so a previous handle must be released
// before a new one is acquired; otherwise instances pile up and overlap.
type ChartHandle struct {
	series   ChartSeries
	released bool
}

func acquireChart(series ChartSeries) *ChartHandle {
	return &ChartHandle{series: series}
}

// Series returns the data backing this chart instance.
func (h *ChartHandle) Series() ChartSeries { return h.series }

// Released reports whether the handle has been torn down.
func (h *ChartHandle) Released() bool { return h.released }

// Release tears the chart instance down. Idempotent.
func (h *ChartHandle) Release() {
	if h == nil {
		return
	}
	h.released = true
}
