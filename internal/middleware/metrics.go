package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis command failures by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "murmur_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// ToggleRaces counts uniqueness conflicts absorbed by the toggle engine.
	// A non-zero rate is normal under concurrent toggling; it is not an error.
	ToggleRaces = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "murmur_toggle_races_total",
		Help: "Total number of toggle operations that lost a uniqueness race and converged",
	}, []string{"relation"})

	// ScheduledJobs counts publication jobs by outcome.
	ScheduledJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "murmur_scheduled_jobs_total",
		Help: "Total number of scheduled publication jobs by outcome",
	}, []string{"outcome"})
)

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}
