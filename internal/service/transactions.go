package service

import (
	"context"
	"fmt"

	"tokenlens/internal/classify"
	"tokenlens/internal/domain"
)

type TaggedTransfer struct {
	domain.TransferRecord
	Type domain.Direction `json:"type"`
}

type TransactionsPayload struct {
	Success        bool             `json:"success"`
	Transactions   []TaggedTransfer `json:"transactions"`
	DegradedChains []string         `json:"degraded_chains,omitempty"`
	UpdatedAt      int64            `json:"updated_at"`
}

// Transactions merges the most recent transfers across chains, newest first,
// each tagged with its classified direction
func (s *Service) Transactions(ctx context.Context, limit int) *TransactionsPayload {
	if limit <= 0 {
		limit = 50
	}

	signature := fmt.Sprintf("transactions:%d", limit)
	var cached TransactionsPayload
	if s.cache.Get(ctx, signature, &cached) {
		return &cached
	}

	merged, degraded := s.chainTransfers(ctx, limit)
	if len(merged) > limit {
		merged = merged[:limit]
	}

	tagged := make([]TaggedTransfer, len(merged))
	for i, tr := range merged {
		tagged[i] = TaggedTransfer{
			TransferRecord: tr,
			Type:           classify.ClassifyDirection(tr.FromLower, tr.ToLower, s.dex),
		}
	}

	payload := &TransactionsPayload{
		Success:        true,
		Transactions:   tagged,
		DegradedChains: degraded,
		UpdatedAt:      s.now().Unix(),
	}
	s.cache.Set(ctx, signature, payload)
	return payload
}
