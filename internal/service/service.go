// Package service holds the response assemblers: one stateless orchestration
// per endpoint. Each one fans out to providers, degrades failed branches to
// empty results, classifies, aggregates and shapes the payload
package service

import (
	"context"
	"sort"
	"time"

	"gitlab.com/nevasik7/alerting/logger"

	"tokenlens/internal/aggregate"
	"tokenlens/internal/cache"
	"tokenlens/internal/config"
	"tokenlens/internal/domain"
	"tokenlens/internal/fanout"
)

// TransferFetch pulls recent transfers from one upstream source
type TransferFetch func(ctx context.Context, limit int) ([]domain.TransferRecord, error)

// HolderSource serves a chain's holder list and count
type HolderSource interface {
	HolderList(ctx context.Context, pageSize int) ([]domain.HolderBalance, error)
	HolderCount(ctx context.Context) (int64, error)
}

// PoolFetch resolves one pool snapshot from one provider
type PoolFetch func(ctx context.Context) (domain.PoolSnapshot, error)

// Pool is one configured liquidity pool with its primary->fallback chain
type Pool struct {
	Address string
	Chain   domain.Chain
	DEX     string
	Pair    string
	FeeTier string
	Fetches []PoolFetch
}

// ChainSource bundles everything the assemblers need for one chain
type ChainSource struct {
	Chain     domain.Chain
	ChainID   uint32
	Transfers []TransferFetch // primary then fallback
	Holders   HolderSource
}

// BaselineFetch reads the campaign-start holder count from the warehouse API
type BaselineFetch func(ctx context.Context) (int64, error)

// HistoryFetch reads real monthly holder counts; empty result means fall back
// to the synthetic curve
type HistoryFetch func(ctx context.Context, chain domain.Chain, months int) ([]aggregate.TrendPoint, error)

type Service struct {
	log      logger.Logger
	cfg      *config.Config
	dex      *domain.KnownAddressSet
	chains   []ChainSource
	pools    []Pool
	baseline BaselineFetch
	history  HistoryFetch
	cache    *cache.Cache
	now      func() time.Time
}

type Deps struct {
	Log      logger.Logger
	Cfg      *config.Config
	DEXSet   *domain.KnownAddressSet
	Chains   []ChainSource
	Pools    []Pool
	Baseline BaselineFetch
	History  HistoryFetch
	Cache    *cache.Cache
	Now      func() time.Time
}

func New(d Deps) *Service {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		log:      d.Log,
		cfg:      d.Cfg,
		dex:      d.DEXSet,
		chains:   d.Chains,
		pools:    d.Pools,
		baseline: d.Baseline,
		history:  d.History,
		cache:    d.Cache,
		now:      now,
	}
}

// chainTransfers fans out one transfer fetch per chain and merges the
// successes. A failed chain is logged and contributes nothing
func (s *Service) chainTransfers(ctx context.Context, limit int) ([]domain.TransferRecord, []string) {
	branches := make([]func(ctx context.Context) ([]domain.TransferRecord, error), len(s.chains))
	for i, ch := range s.chains {
		fetches := ch.Transfers
		branches[i] = func(ctx context.Context) ([]domain.TransferRecord, error) {
			chain := make([]func(ctx context.Context) ([]domain.TransferRecord, error), len(fetches))
			for j, f := range fetches {
				f := f
				chain[j] = func(ctx context.Context) ([]domain.TransferRecord, error) {
					return f(ctx, limit)
				}
			}
			return fanout.First(ctx, chain...)
		}
	}

	results := fanout.Gather(ctx, branches...)

	var merged []domain.TransferRecord
	var degraded []string
	for i, r := range results {
		if !r.OK() {
			degraded = append(degraded, string(s.chains[i].Chain))
			s.log.Errorf("transfers for chain %s degraded: %v", s.chains[i].Chain, r.Err)
			continue
		}
		merged = append(merged, r.Value...)
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp > merged[j].Timestamp
	})
	return merged, degraded
}

// chainHolders fans out one holder-list fetch per chain
func (s *Service) chainHolders(ctx context.Context) (map[domain.Chain][]domain.HolderBalance, []string) {
	type chainHolders struct {
		chain   domain.Chain
		holders []domain.HolderBalance
	}

	branches := make([]func(ctx context.Context) (chainHolders, error), len(s.chains))
	for i, ch := range s.chains {
		ch := ch
		branches[i] = func(ctx context.Context) (chainHolders, error) {
			holders, err := ch.Holders.HolderList(ctx, 100)
			return chainHolders{chain: ch.Chain, holders: holders}, err
		}
	}

	results := fanout.Gather(ctx, branches...)

	out := make(map[domain.Chain][]domain.HolderBalance, len(s.chains))
	var degraded []string
	for i, r := range results {
		if !r.OK() {
			degraded = append(degraded, string(s.chains[i].Chain))
			s.log.Errorf("holder list for chain %s degraded: %v", s.chains[i].Chain, r.Err)
			continue
		}
		out[r.Value.chain] = r.Value.holders
	}
	return out, degraded
}

// balanceIndex flattens per-chain holder lists into lowercase address -> balance
func balanceIndex(byChain map[domain.Chain][]domain.HolderBalance) map[string]float64 {
	out := make(map[string]float64)
	for _, holders := range byChain {
		for _, h := range holders {
			out[domain.NormalizeAddress(h.Address)] += h.Balance
		}
	}
	return out
}

// CheckDependency pings the optional infra for the readiness probe
func (s *Service) CheckDependency(ctx context.Context) error {
	if err := s.cache.Health(ctx); err != nil {
		return err
	}
	return nil
}
