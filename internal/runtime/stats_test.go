package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aowss/orderbook/pkg/matchcore"
)

func TestComputeDepthStatsEmpty(t *testing.T) {
	stats := ComputeDepthStats(nil, nil)
	assert.Zero(t, stats.AskVWAP)
	assert.Zero(t, stats.BidVWAP)
	assert.Zero(t, stats.Imbalance)
}

func TestComputeDepthStatsVWAP(t *testing.T) {
	asks := []matchcore.L2Entry{{Price: 100, Volume: 10}, {Price: 102, Volume: 10}}
	bids := []matchcore.L2Entry{{Price: 99, Volume: 5}}

	stats := ComputeDepthStats(asks, bids)
	assert.InDelta(t, 101, stats.AskVWAP, 1e-9)
	assert.InDelta(t, 99, stats.BidVWAP, 1e-9)
}

func TestComputeDepthStatsImbalance(t *testing.T) {
	asks := []matchcore.L2Entry{{Price: 100, Volume: 10}}
	bids := []matchcore.L2Entry{{Price: 99, Volume: 30}}

	stats := ComputeDepthStats(asks, bids)
	assert.InDelta(t, 0.5, stats.Imbalance, 1e-9) // (30-10)/40
}

func TestComputeDepthStatsOneSidedBook(t *testing.T) {
	asks := []matchcore.L2Entry{{Price: 100, Volume: 10}}
	stats := ComputeDepthStats(asks, nil)
	assert.Equal(t, 1.0, stats.Imbalance*-1)
	assert.Zero(t, stats.BidVWAP)
}
