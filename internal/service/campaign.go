package service

import (
	"context"

	"tokenlens/internal/aggregate"
	"tokenlens/internal/classify"
	"tokenlens/internal/domain"
	"tokenlens/internal/fanout"
)

type RetentionStats struct {
	AvgRetentionPct    float64 `json:"avg_retention_pct"`
	MedianRetentionPct float64 `json:"median_retention_pct"`
	StillHoldingPct    float64 `json:"still_holding_pct"` // wallets with a live balance
	ExitedPct          float64 `json:"exited_pct"`        // wallets that sold or sent everything
}

type HolderGrowth struct {
	Baseline  int64   `json:"baseline"` // holder count at campaign start
	Current   int64   `json:"current"`
	GrowthPct float64 `json:"growth_pct"`
}

type CampaignPayload struct {
	Success       bool                   `json:"success"`
	CampaignStart int64                  `json:"campaign_start"`
	TotalWallets  int                    `json:"total_wallets"`
	WeeklyCohorts []aggregate.WeekCohort `json:"weekly_cohorts"`
	Retention     RetentionStats         `json:"retention"`
	HolderGrowth  HolderGrowth           `json:"holder_growth"`
	UpdatedAt     int64                  `json:"updated_at"`
}

// CampaignMetrics recomputes the campaign read-model: wallets first acquiring
// after the fixed campaign start, weekly acquisition cohorts, retention/exit
// statistics and a holder-count growth snapshot against the warehouse baseline
func (s *Service) CampaignMetrics(ctx context.Context) *CampaignPayload {
	const signature = "campaign"
	var cached CampaignPayload
	if s.cache.Get(ctx, signature, &cached) {
		return &cached
	}

	now := s.now()
	start := s.cfg.Token.CampaignStart

	transfers, _ := s.chainTransfers(ctx, 1000)
	byChain, _ := s.chainHolders(ctx)
	profiles := aggregate.BuildProfiles(transfers, s.dex, balanceIndex(byChain))

	// campaign scope: first acquisition at or after campaign start
	campaignWallets := make(map[string]*domain.WalletProfile)
	for addr, p := range profiles {
		if p.FirstSeen >= start.Unix() {
			campaignWallets[addr] = p
		}
	}

	var retentions []float64
	holding := 0
	for _, p := range campaignWallets {
		retentions = append(retentions, classify.RetentionPct(p.TotalBought, p.TotalReceived, p.TotalSold, p.TotalSent, p.CurrentBalance))
		if p.CurrentBalance > 0 {
			holding++
		}
	}

	stats := RetentionStats{
		AvgRetentionPct:    aggregate.Mean(retentions),
		MedianRetentionPct: aggregate.Median(retentions),
	}
	if n := len(campaignWallets); n > 0 {
		stats.StillHoldingPct = float64(holding) / float64(n) * 100
		stats.ExitedPct = 100 - stats.StillHoldingPct
	}

	growth := s.holderGrowth(ctx)

	payload := &CampaignPayload{
		Success:       true,
		CampaignStart: start.Unix(),
		TotalWallets:  len(campaignWallets),
		WeeklyCohorts: aggregate.WeeklyCohorts(campaignWallets, start, now),
		Retention:     stats,
		HolderGrowth:  growth,
		UpdatedAt:     now.Unix(),
	}
	s.cache.Set(ctx, signature, payload)
	return payload
}

// holderGrowth compares the warehouse-API baseline against the live combined
// count. Either side failing degrades to zero rather than erroring the call
func (s *Service) holderGrowth(ctx context.Context) HolderGrowth {
	var growth HolderGrowth

	if s.baseline != nil {
		n, err := s.baseline(ctx)
		if err != nil {
			s.log.Errorf("campaign baseline degraded: %v", err)
		} else {
			growth.Baseline = n
		}
	}

	growth.Current = s.combinedHolderCount(ctx)
	if growth.Baseline > 0 {
		growth.GrowthPct = aggregate.PctChange(float64(growth.Current), float64(growth.Baseline))
	}
	return growth
}

// combinedHolderCount fans out per-chain counts and sums the successes
func (s *Service) combinedHolderCount(ctx context.Context) int64 {
	branches := make([]func(ctx context.Context) (int64, error), len(s.chains))
	for i, ch := range s.chains {
		ch := ch
		branches[i] = func(ctx context.Context) (int64, error) {
			return ch.Holders.HolderCount(ctx)
		}
	}

	var total int64
	for i, r := range fanout.Gather(ctx, branches...) {
		if !r.OK() {
			s.log.Errorf("holder count for chain %s degraded: %v", s.chains[i].Chain, r.Err)
			continue
		}
		total += r.Value
	}
	return total
}
