package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Notification dispatch is best effort: failures never reach the caller, so
// the counters below are the only place they surface besides the log.
var (
	// NotificationPublishes counts dispatcher calls by entity kind
	NotificationPublishes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_notification_publishes_total",
		Help: "Number of notification publishes issued, by entity kind.",
	}, []string{"entity"})

	// NotificationFailures counts dispatcher calls the broker rejected
	NotificationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_notification_failures_total",
		Help: "Number of notification publishes that failed, by entity kind.",
	}, []string{"entity"})

	// PermissionCacheHits counts permission resolutions served from cache
	PermissionCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_permission_cache_hits_total",
		Help: "Number of permission resolutions served from the cache.",
	})

	// PermissionCacheMisses counts permission resolutions recomputed
	PermissionCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_permission_cache_misses_total",
		Help: "Number of permission resolutions recomputed from the store.",
	})
)
