package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	Submissions      = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "engagement_submissions_total", Help: "Engagement submissions by kind and result"}, []string{"kind", "result"})
	RateLimitRejects = prometheus.NewCounter(prometheus.CounterOpts{Name: "engagement_rate_limit_rejects_total", Help: "Submissions rejected by the rate limiter"})
	Decisions        = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "engagement_decisions_total", Help: "Poster decisions by kind and outcome"}, []string{"kind", "outcome"})
	Withdrawals      = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ledger_withdrawals_total", Help: "Withdrawal requests by result"}, []string{"result"})
	SettledHolds     = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ledger_settled_holds_total", Help: "Earning holds settled by outcome"}, []string{"outcome"})
)

// Handler exposes /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			Submissions,
			RateLimitRejects,
			Decisions,
			Withdrawals,
			SettledHolds,
		)
	})
	return promhttp.Handler()
}

// ObserveSettlement matches the settlement worker's observer hook.
func ObserveSettlement(outcome string, holds int) {
	SettledHolds.WithLabelValues(outcome).Add(float64(holds))
}
