// Package metrics exports the core's runtime state as Prometheus
// gauges and counters, served from the same process as the long-running
// schedule command (net/http, already a teacher dependency by way of
// its fetchFile URL-fetching helper).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	gaBestCost = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ga_best_cost",
		Help: "Cost of the best individual in the current population.",
	})
	gaGeneration = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ga_generation",
		Help: "Index of the generation most recently completed.",
	})
	gaPopulationSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ga_population_size",
		Help: "Number of individuals in the current population.",
	})
	catalogClassesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_classes_total",
		Help: "Number of classes loaded from the catalog snapshot.",
	})
	conflictCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "conflict_cache_hits_total",
		Help: "Conflict-analysis results served from cache.",
	})
	conflictCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "conflict_cache_misses_total",
		Help: "Conflict-analysis results rebuilt after a cache miss.",
	})
)

// Recorder implements ga.Recorder, feeding each generation's progress
// into the gauges above without internal/ga importing this package's
// HTTP plumbing.
type Recorder struct{}

func (Recorder) ObserveGeneration(generation, best, _ int, populationSize int) {
	gaGeneration.Set(float64(generation))
	gaBestCost.Set(float64(best))
	gaPopulationSize.Set(float64(populationSize))
}

func SetCatalogClassesTotal(n int) {
	catalogClassesTotal.Set(float64(n))
}

func RecordCacheHit()  { conflictCacheHitsTotal.Inc() }
func RecordCacheMiss() { conflictCacheMissesTotal.Inc() }

// Handler returns the /metrics HTTP handler in Prometheus exposition
// format.
func Handler() http.Handler {
	return promhttp.Handler()
}
