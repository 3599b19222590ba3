// Package aggregate folds normalized transfer records into per-wallet and
// per-period summaries. All functions are pure over their inputs
package aggregate

import (
	"time"

	"tokenlens/internal/classify"
	"tokenlens/internal/domain"
)

// BuildProfiles folds an unordered transfer list into one profile per distinct
// non-DEX wallet that appears as sender or receiver. FirstSeen is the minimum
// timestamp among legs where the wallet receives (sends never establish
// first-seen). Balances: an authoritative holder-list balance wins; otherwise
// max(0, acquired-sold-sent) — an accepted approximation when transfers exist
// outside the observed window
func BuildProfiles(transfers []domain.TransferRecord, dex *domain.KnownAddressSet, balances map[string]float64) map[string]*domain.WalletProfile {
	profiles := make(map[string]*domain.WalletProfile)

	get := func(addr string, chain domain.Chain) *domain.WalletProfile {
		p, ok := profiles[addr]
		if !ok {
			p = &domain.WalletProfile{Address: addr, Chain: chain}
			profiles[addr] = p
		}
		return p
	}

	for _, tr := range transfers {
		fromDEX := dex.Contains(tr.FromLower)
		toDEX := dex.Contains(tr.ToLower)
		if fromDEX && toDEX {
			continue // liquidity shuffling, no wallet involved
		}

		if !toDEX && !domain.IsBurnAddress(tr.ToLower) {
			p := get(tr.ToLower, tr.Chain)
			if p.FirstSeen == 0 || tr.Timestamp < p.FirstSeen {
				p.FirstSeen = tr.Timestamp
			}
			if fromDEX {
				p.TotalBought += tr.Amount
			} else {
				p.TotalReceived += tr.Amount
			}
		}

		if !fromDEX && !domain.IsBurnAddress(tr.FromLower) {
			p := get(tr.FromLower, tr.Chain)
			if toDEX {
				p.TotalSold += tr.Amount
			} else {
				p.TotalSent += tr.Amount
			}
		}
	}

	for addr, p := range profiles {
		if exact, ok := balances[addr]; ok {
			p.CurrentBalance = exact
			p.BalanceIsExact = true
			continue
		}
		est := p.TotalAcquired() - p.TotalSold - p.TotalSent
		if est < 0 {
			est = 0
		}
		p.CurrentBalance = est
	}

	return profiles
}

// HoldingDays is full days between first acquisition and now
func HoldingDays(firstSeen int64, now time.Time) int {
	if firstSeen <= 0 {
		return 0
	}
	d := int(now.Sub(time.Unix(firstSeen, 0)).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// Behavior derives the read-only classified record for one profile
func Behavior(p *domain.WalletProfile, now time.Time) domain.HolderBehaviorRecord {
	days := HoldingDays(p.FirstSeen, now)
	archetype, desc := classify.ClassifyBehavior(days, p.TotalBought, p.TotalReceived, p.TotalSold, p.TotalSent, p.CurrentBalance)

	return domain.HolderBehaviorRecord{
		Address:           p.Address,
		Chain:             p.Chain,
		BehaviorType:      archetype,
		Description:       desc,
		HoldingDays:       days,
		HoldingBucket:     classify.HoldingBucket(days),
		AcquisitionMethod: classify.Acquisition(p.TotalBought, p.TotalReceived),
		RetentionPct:      classify.RetentionPct(p.TotalBought, p.TotalReceived, p.TotalSold, p.TotalSent, p.CurrentBalance),
		CurrentBalance:    p.CurrentBalance,
	}
}
