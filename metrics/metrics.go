// Package metrics provides Prometheus instrumentation for the fiva node.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MessagesTotal counts delivered internal messages by opcode and outcome.
	MessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fiva_messages_total",
		Help: "Total number of internal messages processed",
	}, []string{"op", "outcome"})

	// BouncesTotal counts messages returned to their sender.
	BouncesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fiva_bounces_total",
		Help: "Messages bounced back after a failed execution",
	})

	// DeploysTotal counts contracts deployed, partitioned by code.
	DeploysTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fiva_deploys_total",
		Help: "Contracts deployed on their first message",
	}, []string{"code"})

	// ComputeFees accumulates compute fees charged, in nano units.
	ComputeFees = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fiva_compute_fees_total",
		Help: "Compute fees charged for message execution, in nano units",
	})

	// StepsPerTx observes how many messages a single inbound message caused.
	StepsPerTx = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fiva_steps_per_tx",
		Help:    "Number of internal messages processed per transaction",
		Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128},
	})

	// MarketIndex tracks the last accepted interest index per market.
	MarketIndex = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fiva_market_index",
		Help: "Interest index of a market, 1000 is a rate of 1.0",
	}, []string{"market"})

	// AdminCommandsTotal counts admin commands by opcode and outcome.
	AdminCommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fiva_admin_commands_total",
		Help: "Admin commands received by markets",
	}, []string{"op", "outcome"})

	// SuppliedTotal accumulates underlying supplied to markets, in nano units.
	SuppliedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fiva_supplied_total",
		Help: "Underlying supplied to markets, in nano units",
	}, []string{"market"})

	// RedeemedTotal accumulates underlying released by markets, in nano units.
	RedeemedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fiva_redeemed_total",
		Help: "Underlying released by markets, in nano units",
	}, []string{"market"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeFailed   = "failed"
	OutcomeRejected = "rejected"
)
