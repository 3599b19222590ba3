package aggregate

import (
	"sort"

	"tokenlens/internal/domain"
)

func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func Median(vals []float64) float64 {
	n := len(vals)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, vals)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// PctChange is the relative change from prev to cur in percent; 0 when prev is 0
func PctChange(cur, prev float64) float64 {
	if prev == 0 {
		return 0
	}
	return (cur - prev) / prev * 100
}

// MeanPoolPriceUSD averages simultaneous pool prices across chains: a simple
// mean of available non-zero prices. A liquidity-weighted average was
// deliberately not chosen; the payload field is still named vwap for the
// consumer's sake
func MeanPoolPriceUSD(pools []domain.PoolSnapshot) float64 {
	var prices []float64
	for _, p := range pools {
		if p.Unavailable || p.PriceUSD <= 0 {
			continue
		}
		prices = append(prices, p.PriceUSD)
	}
	return Mean(prices)
}

// PoolTotals sums TVL/volume/trade counts over available pools only
func PoolTotals(pools []domain.PoolSnapshot) (tvl, volume float64, buys, sells int64) {
	for _, p := range pools {
		if p.Unavailable {
			continue
		}
		tvl += p.TVLUSD
		volume += p.Volume24h
		buys += p.Buys24h
		sells += p.Sells24h
	}
	return tvl, volume, buys, sells
}

// Whales filters transfers at or above the absolute threshold (inclusive)
func Whales(transfers []domain.TransferRecord, threshold float64) []domain.TransferRecord {
	var out []domain.TransferRecord
	for _, tr := range transfers {
		if tr.Amount >= threshold {
			out = append(out, tr)
		}
	}
	return out
}

// Fixed absolute whale severity breakpoints
type Tiers struct {
	Large    float64
	Huge     float64
	Colossal float64
}

// WhaleSeverity maps an amount to a fixed absolute tier
func WhaleSeverity(amount float64, tiers Tiers) string {
	switch {
	case tiers.Colossal > 0 && amount >= tiers.Colossal:
		return "colossal"
	case tiers.Huge > 0 && amount >= tiers.Huge:
		return "huge"
	default:
		return "large"
	}
}

// Sentiment labels net whale flow. Buy volume dominating sells by 20% or more
// reads bullish, the reverse bearish, anything in between neutral
func Sentiment(buyVolume, sellVolume float64) string {
	total := buyVolume + sellVolume
	if total == 0 {
		return "neutral"
	}
	ratio := buyVolume / total
	switch {
	case ratio >= 0.6:
		return "bullish"
	case ratio <= 0.4:
		return "bearish"
	default:
		return "neutral"
	}
}
