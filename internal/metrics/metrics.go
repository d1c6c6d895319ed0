// Package metrics exposes prometheus collectors for the ingestion
// pipeline and the layer store.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LayersCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rgis_layers_created_total",
		Help: "Total layers added to the store",
	})
	LoadFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rgis_load_failures_total",
		Help: "Total load tasks that failed",
	})
	FetchFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rgis_fetch_failures_total",
		Help: "Total network fetch tasks that failed",
	})
	LoadDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "rgis_load_duration_seconds",
		Help:    "GeoJSON load task duration in seconds",
		Buckets: prometheus.DefBuckets,
	})
	LayerCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rgis_layer_count",
		Help: "Current number of layers in the store",
	})
)

func init() {
	prometheus.MustRegister(LayersCreatedTotal)
	prometheus.MustRegister(LoadFailuresTotal)
	prometheus.MustRegister(FetchFailuresTotal)
	prometheus.MustRegister(LoadDurationSeconds)
	prometheus.MustRegister(LayerCount)
}

// Handler returns the scrape endpoint handler for the registered
// collectors.
func Handler() http.Handler {
	return promhttp.Handler()
}
