package cache

import "github.com/prometheus/client_golang/prometheus"

var (
	// cacheRequests counts lookups by region and result
	// (hit, miss, error, stale_fill).
	cacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diet_cache_requests_total",
			Help: "Cache lookups by region and result.",
		},
		[]string{"region", "result"},
	)

	// cacheEvictions counts explicit invalidations by region and kind (key, all).
	cacheEvictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diet_cache_evictions_total",
			Help: "Explicit cache invalidations by region and kind.",
		},
		[]string{"region", "kind"},
	)
)

func init() {
	prometheus.MustRegister(cacheRequests, cacheEvictions)
}
