// Package metrics exposes Prometheus instrumentation for the runtime
// wrapped around the matching core: command throughput, trade volume,
// match latency, and book depth.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CommandsProcessed counts every command the runtime routed to an
	// Engine, labeled by symbol, opcode, and result code.
	CommandsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matchcore_commands_processed_total",
		Help: "Total commands dispatched to an engine, by symbol/opcode/result.",
	}, []string{"symbol", "opcode", "result"})

	// TradeVolume sums matched lots, labeled by symbol.
	TradeVolume = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matchcore_trade_volume_total",
		Help: "Total matched volume, by symbol.",
	}, []string{"symbol"})

	// MatchLatency observes wall-clock time of one Multiplexer.Dispatch call:
	// queueing on the symbol's worker plus Engine.Dispatch itself.
	MatchLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "matchcore_match_latency_seconds",
		Help:    "Time spent routing and dispatching a command to an engine, by symbol.",
		Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10), // 1us .. ~262ms
	}, []string{"symbol"})

	// BookDepth gauges the number of distinct price levels per side.
	BookDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "matchcore_book_depth",
		Help: "Number of resting price levels, by symbol/side.",
	}, []string{"symbol", "side"})

	// BestPrice gauges the current best bid/ask, by symbol/side.
	BestPrice = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "matchcore_best_price",
		Help: "Best bid/ask price, by symbol/side.",
	}, []string{"symbol", "side"})
)
