package service

import (
	"context"

	"tokenlens/internal/aggregate"
	"tokenlens/internal/classify"
	"tokenlens/internal/domain"
)

type WhaleTransfer struct {
	domain.TransferRecord
	Type     domain.Direction `json:"type"`
	Severity string           `json:"severity"`
}

type WhaleTotals struct {
	BuyVolume      float64 `json:"buy_volume"`
	SellVolume     float64 `json:"sell_volume"`
	TransferVolume float64 `json:"transfer_volume"`
}

type WhalesPayload struct {
	Success        bool            `json:"success"`
	Threshold      float64         `json:"threshold"`
	Whales         []WhaleTransfer `json:"whales"`
	Totals         WhaleTotals     `json:"totals"`
	Sentiment      string          `json:"sentiment"`
	DegradedChains []string        `json:"degraded_chains,omitempty"`
	UpdatedAt      int64           `json:"updated_at"`
}

// WhaleActivity filters recent transfers at or above the fixed token-amount
// threshold, tags each with direction and a fixed severity tier, and labels
// the net flow bullish or bearish
func (s *Service) WhaleActivity(ctx context.Context) *WhalesPayload {
	const signature = "whales"
	var cached WhalesPayload
	if s.cache.Get(ctx, signature, &cached) {
		return &cached
	}

	threshold := s.cfg.Token.WhaleThreshold
	tiers := aggregate.Tiers{
		Large:    s.cfg.Token.WhaleTiers.Large,
		Huge:     s.cfg.Token.WhaleTiers.Huge,
		Colossal: s.cfg.Token.WhaleTiers.Colossal,
	}

	merged, degraded := s.chainTransfers(ctx, 500)
	big := aggregate.Whales(merged, threshold)

	whales := make([]WhaleTransfer, len(big))
	var totals WhaleTotals
	for i, tr := range big {
		dir := classify.ClassifyDirection(tr.FromLower, tr.ToLower, s.dex)
		whales[i] = WhaleTransfer{
			TransferRecord: tr,
			Type:           dir,
			Severity:       aggregate.WhaleSeverity(tr.Amount, tiers),
		}
		switch dir {
		case domain.DirBuy:
			totals.BuyVolume += tr.Amount
		case domain.DirSell:
			totals.SellVolume += tr.Amount
		default:
			totals.TransferVolume += tr.Amount
		}
	}

	payload := &WhalesPayload{
		Success:        true,
		Threshold:      threshold,
		Whales:         whales,
		Totals:         totals,
		Sentiment:      aggregate.Sentiment(totals.BuyVolume, totals.SellVolume),
		DegradedChains: degraded,
		UpdatedAt:      s.now().Unix(),
	}
	s.cache.Set(ctx, signature, payload)
	return payload
}
