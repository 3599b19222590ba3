package service

import (
	"context"

	"tokenlens/internal/aggregate"
	"tokenlens/internal/domain"
	"tokenlens/internal/fanout"
)

type MarketAggregates struct {
	VWAP             float64 `json:"vwap"` // simple mean of available pool prices, see field name note in the docs
	TotalTVLUSD      float64 `json:"total_tvl_usd"`
	TotalVolume24h   float64 `json:"total_volume_24h_usd"`
	TotalBuys24h     int64   `json:"total_buys_24h"`
	TotalSells24h    int64   `json:"total_sells_24h"`
	AvailablePools   int     `json:"available_pools"`
	UnavailablePools int     `json:"unavailable_pools"`
}

type MarketPayload struct {
	Success   bool                  `json:"success"`
	Pools     []domain.PoolSnapshot `json:"pools"`
	Aggregate MarketAggregates      `json:"aggregate"`
	UpdatedAt int64                 `json:"updated_at"`
}

// MarketData resolves every configured pool through its primary->fallback
// provider chain in parallel. A pool whose whole chain failed comes back as
// the zeroed unavailable sentinel and is excluded from aggregate sums
func (s *Service) MarketData(ctx context.Context) *MarketPayload {
	const signature = "market"
	var cached MarketPayload
	if s.cache.Get(ctx, signature, &cached) {
		return &cached
	}

	branches := make([]func(ctx context.Context) (domain.PoolSnapshot, error), len(s.pools))
	for i, pool := range s.pools {
		pool := pool
		branches[i] = func(ctx context.Context) (domain.PoolSnapshot, error) {
			fetches := make([]func(ctx context.Context) (domain.PoolSnapshot, error), len(pool.Fetches))
			for j, f := range pool.Fetches {
				fetches[j] = f
			}
			return fanout.First(ctx, fetches...)
		}
	}
	results := fanout.Gather(ctx, branches...)

	snapshots := make([]domain.PoolSnapshot, len(results))
	for i, r := range results {
		if !r.OK() {
			pool := s.pools[i]
			s.log.Errorf("pool %s on %s degraded: %v", pool.Address, pool.Chain, r.Err)
			snapshots[i] = domain.UnavailablePool(pool.Address, pool.Chain, pool.DEX, pool.Pair, pool.FeeTier)
			continue
		}
		snapshots[i] = r.Value
	}

	tvl, volume, buys, sells := aggregate.PoolTotals(snapshots)
	agg := MarketAggregates{
		VWAP:           aggregate.MeanPoolPriceUSD(snapshots),
		TotalTVLUSD:    tvl,
		TotalVolume24h: volume,
		TotalBuys24h:   buys,
		TotalSells24h:  sells,
	}
	for _, snap := range snapshots {
		if snap.Unavailable {
			agg.UnavailablePools++
		} else {
			agg.AvailablePools++
		}
	}

	payload := &MarketPayload{
		Success:   true,
		Pools:     snapshots,
		Aggregate: agg,
		UpdatedAt: s.now().Unix(),
	}
	s.cache.Set(ctx, signature, payload)
	return payload
}
