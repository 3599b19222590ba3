package service

import (
	"context"
	"fmt"
	"sort"

	"tokenlens/internal/domain"
)

type RankedHolder struct {
	Rank         int          `json:"rank"`
	Address      string       `json:"address"`       // original case
	AddressLower string       `json:"address_lower"` // normalized form
	Chain        domain.Chain `json:"chain"`
	Balance      float64      `json:"balance"`
	PctOfSupply  float64      `json:"pct_of_supply"`
}

type HoldersPayload struct {
	Success        bool           `json:"success"`
	Holders        []RankedHolder `json:"holders"`
	TotalSupply    float64        `json:"total_supply"`
	DegradedChains []string       `json:"degraded_chains,omitempty"`
	UpdatedAt      int64          `json:"updated_at"`
}

// Holders merges both chains' holder lists and ranks by balance descending.
// Percent of supply is computed against the fixed configured total supply
func (s *Service) Holders(ctx context.Context, limit int) *HoldersPayload {
	if limit <= 0 {
		limit = 50
	}

	signature := fmt.Sprintf("holders:%d", limit)
	var cached HoldersPayload
	if s.cache.Get(ctx, signature, &cached) {
		return &cached
	}

	byChain, degraded := s.chainHolders(ctx)

	type entry struct {
		holder domain.HolderBalance
		chain  domain.Chain
	}
	var entries []entry
	for chain, holders := range byChain {
		for _, h := range holders {
			if domain.IsBurnAddress(h.Address) || s.dex.Contains(h.Address) {
				continue
			}
			entries = append(entries, entry{holder: h, chain: chain})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].holder.Balance > entries[j].holder.Balance
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}

	supply := s.cfg.Token.TotalSupply
	ranked := make([]RankedHolder, len(entries))
	for i, e := range entries {
		ranked[i] = RankedHolder{
			Rank:         i + 1,
			Address:      e.holder.Address,
			AddressLower: domain.NormalizeAddress(e.holder.Address),
			Chain:        e.chain,
			Balance:      e.holder.Balance,
			PctOfSupply:  e.holder.Balance / supply * 100,
		}
	}

	payload := &HoldersPayload{
		Success:        true,
		Holders:        ranked,
		TotalSupply:    supply,
		DegradedChains: degraded,
		UpdatedAt:      s.now().Unix(),
	}
	s.cache.Set(ctx, signature, payload)
	return payload
}
