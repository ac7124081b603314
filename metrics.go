package photos

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "icloud_photos",
			Name:      "queries_total",
			Help:      "Database queries issued, by endpoint.",
		},
		[]string{"endpoint"},
	)

	queryRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "icloud_photos",
			Name:      "query_retries_total",
			Help:      "Page fetch failures handed to a retry policy.",
		},
	)

	assetsListedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "icloud_photos",
			Name:      "assets_listed_total",
			Help:      "Photo assets yielded by album iteration.",
		},
	)
)
