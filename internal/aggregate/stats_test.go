package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenlens/internal/domain"
)

func TestMeanMedian(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 2.0, Median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 2, 3}))
}

func TestPctChange(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, PctChange(5, 0))
	assert.InDelta(t, 50.0, PctChange(150, 100), 1e-9)
	assert.InDelta(t, -25.0, PctChange(75, 100), 1e-9)
}

func TestMeanPoolPriceUSD_SkipsUnavailableAndZero(t *testing.T) {
	t.Parallel()

	pools := []domain.PoolSnapshot{
		{PriceUSD: 2.0},
		{PriceUSD: 4.0},
		{PriceUSD: 100.0, Unavailable: true},
		{PriceUSD: 0},
	}
	assert.InDelta(t, 3.0, MeanPoolPriceUSD(pools), 1e-9)
	assert.Equal(t, 0.0, MeanPoolPriceUSD(nil))
}

func TestPoolTotals_ExcludesUnavailable(t *testing.T) {
	t.Parallel()

	pools := []domain.PoolSnapshot{
		{TVLUSD: 100, Volume24h: 10, Buys24h: 5, Sells24h: 3},
		{TVLUSD: 200, Volume24h: 20, Buys24h: 1, Sells24h: 2},
		domain.UnavailablePool("0xp", domain.ChainBase, "uniswap", "TKN/WETH", "0.3%"),
	}

	tvl, vol, buys, sells := PoolTotals(pools)
	assert.Equal(t, 300.0, tvl)
	assert.Equal(t, 30.0, vol)
	assert.Equal(t, int64(6), buys)
	assert.Equal(t, int64(5), sells)
}

func TestWhales_ThresholdInclusive(t *testing.T) {
	t.Parallel()

	transfers := []domain.TransferRecord{
		{TxHash: "a", Amount: 49999.999},
		{TxHash: "b", Amount: 50000},
		{TxHash: "c", Amount: 50000.001},
	}
	got := Whales(transfers, 50000)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].TxHash, "exactly the threshold is included")
	assert.Equal(t, "c", got[1].TxHash)
}

func TestWhaleSeverity(t *testing.T) {
	t.Parallel()

	tiers := Tiers{Large: 50_000, Huge: 250_000, Colossal: 1_000_000}
	assert.Equal(t, "large", WhaleSeverity(50_000, tiers))
	assert.Equal(t, "huge", WhaleSeverity(250_000, tiers))
	assert.Equal(t, "colossal", WhaleSeverity(2_000_000, tiers))
}

func TestSentiment(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "neutral", Sentiment(0, 0))
	assert.Equal(t, "bullish", Sentiment(70, 30))
	assert.Equal(t, "bearish", Sentiment(30, 70))
	assert.Equal(t, "neutral", Sentiment(50, 50))
}

func TestSyntheticTrend(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	points := SyntheticTrend(12000, 12, now)
	require.Len(t, points, 12)

	assert.Equal(t, "2025-09", points[0].Month)
	assert.Equal(t, "2026-08", points[11].Month)
	assert.Equal(t, int64(12000), points[11].Holders, "newest point anchors to the current count")
	assert.Less(t, points[0].Holders, points[11].Holders, "curve grows toward the anchor")

	again := SyntheticTrend(12000, 12, now)
	assert.Equal(t, points, again, "deterministic for the same inputs")

	assert.Nil(t, SyntheticTrend(0, 12, now))
	assert.Nil(t, SyntheticTrend(100, 0, now))
}
