package runtime

import (
	"gonum.org/v1/gonum/stat"

	"github.com/aowss/orderbook/pkg/matchcore"
)

// DepthStats is a read-only derivative of an L2 snapshot, computed for the
// admin endpoint's response. It never feeds back into matching.
type DepthStats struct {
	AskVWAP   float64
	BidVWAP   float64
	Imbalance float64 // (bid_volume - ask_volume) / (bid_volume + ask_volume), in [-1, 1]
}

// ComputeDepthStats folds volume-weighted-average-price and a bid/ask
// volume imbalance ratio out of two FillAsks/FillBids snapshots.
func ComputeDepthStats(asks, bids []matchcore.L2Entry) DepthStats {
	askVWAP, askVolume := vwap(asks)
	bidVWAP, bidVolume := vwap(bids)

	var imbalance float64
	if total := bidVolume + askVolume; total > 0 {
		imbalance = (bidVolume - askVolume) / total
	}

	return DepthStats{AskVWAP: askVWAP, BidVWAP: bidVWAP, Imbalance: imbalance}
}

func vwap(entries []matchcore.L2Entry) (price float64, totalVolume float64) {
	if len(entries) == 0 {
		return 0, 0
	}
	prices := make([]float64, len(entries))
	weights := make([]float64, len(entries))
	for i, e := range entries {
		prices[i] = float64(e.Price)
		weights[i] = float64(e.Volume)
		totalVolume += weights[i]
	}
	if totalVolume == 0 {
		return 0, 0
	}
	return stat.Mean(prices, weights), totalVolume
}
