package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GateDecisions counts session gate outcomes (unauthenticated, profile_incomplete, ready, error).
	GateDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capes_gate_decisions_total",
		Help: "Total number of session gate decisions by outcome",
	}, []string{"outcome"})

	// ProfileSaves counts profile completion saves by outcome.
	ProfileSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capes_profile_saves_total",
		Help: "Total number of profile saves by outcome",
	}, []string{"outcome"})

	// RSVPs counts RSVP changes by action (create, delete).
	RSVPs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capes_rsvps_total",
		Help: "Total number of RSVP changes by action",
	}, []string{"action"})

	// FilterResultSize records how many events survive a filter run.
	FilterResultSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "capes_filter_result_size",
		Help:    "Number of events returned by a filter run",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
	})

	// CatalogCacheLookups counts catalog cache hits and misses.
	CatalogCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capes_catalog_cache_lookups_total",
		Help: "Total number of catalog cache lookups by result",
	}, []string{"result"})
)
