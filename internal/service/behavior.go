package service

import (
	"context"
	"sort"

	"tokenlens/internal/aggregate"
	"tokenlens/internal/domain"
)

type BehaviorDistribution struct {
	ByArchetype   map[domain.Archetype]int         `json:"by_archetype"`
	ByHolding     map[string]int                   `json:"by_holding_bucket"`
	ByAcquisition map[domain.AcquisitionMethod]int `json:"by_acquisition"`
}

type BehaviorPayload struct {
	Success      bool                          `json:"success"`
	Holders      []domain.HolderBehaviorRecord `json:"holders"`
	Distribution BehaviorDistribution          `json:"distribution"`
	Analyzed     int                           `json:"analyzed"`
	UpdatedAt    int64                         `json:"updated_at"`
}

// HolderBehavior classifies the top K holders from their observed transfer
// history and summarizes the distribution across archetypes, holding-duration
// buckets and acquisition methods
func (s *Service) HolderBehavior(ctx context.Context) *BehaviorPayload {
	const signature = "behavior"
	var cached BehaviorPayload
	if s.cache.Get(ctx, signature, &cached) {
		return &cached
	}

	now := s.now()
	topK := s.cfg.Token.TopHolders

	transfers, _ := s.chainTransfers(ctx, 1000)
	byChain, _ := s.chainHolders(ctx)
	balances := balanceIndex(byChain)
	profiles := aggregate.BuildProfiles(transfers, s.dex, balances)

	// top K by authoritative balance; wallets only known from the holder list
	// get a minimal profile so they still classify (as holders of unknown age)
	type ranked struct {
		addr    string
		balance float64
	}
	var order []ranked
	for addr, bal := range balances {
		if domain.IsBurnAddress(addr) || s.dex.Contains(addr) {
			continue
		}
		order = append(order, ranked{addr: addr, balance: bal})
	}
	sort.Slice(order, func(i, j int) bool { return order[i].balance > order[j].balance })
	if len(order) > topK {
		order = order[:topK]
	}

	records := make([]domain.HolderBehaviorRecord, 0, len(order))
	dist := BehaviorDistribution{
		ByArchetype:   make(map[domain.Archetype]int),
		ByHolding:     make(map[string]int),
		ByAcquisition: make(map[domain.AcquisitionMethod]int),
	}

	for _, r := range order {
		p, ok := profiles[r.addr]
		if !ok {
			p = &domain.WalletProfile{
				Address:        r.addr,
				TotalReceived:  r.balance,
				CurrentBalance: r.balance,
				BalanceIsExact: true,
			}
		}
		rec := aggregate.Behavior(p, now)
		records = append(records, rec)
		dist.ByArchetype[rec.BehaviorType]++
		dist.ByHolding[rec.HoldingBucket]++
		dist.ByAcquisition[rec.AcquisitionMethod]++
	}

	payload := &BehaviorPayload{
		Success:      true,
		Holders:      records,
		Distribution: dist,
		Analyzed:     len(records),
		UpdatedAt:    now.Unix(),
	}
	s.cache.Set(ctx, signature, payload)
	return payload
}
