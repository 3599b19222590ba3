// Package classify holds the pure holder-behavior and transaction-direction
// rules. Everything here is deterministic: same inputs, same labels
package classify

import (
	"tokenlens/internal/domain"
)

// ClassifyDirection tags a transfer by comparing both counterparties against
// the known DEX address set. Buy iff the sender is liquidity infrastructure
// and the receiver is not; Sell the reverse; everything else is a plain
// wallet-to-wallet transfer (including DEX-to-DEX)
func ClassifyDirection(from, to string, dex *domain.KnownAddressSet) domain.Direction {
	fromDEX := dex.Contains(from)
	toDEX := dex.Contains(to)

	switch {
	case fromDEX && !toDEX:
		return domain.DirBuy
	case !fromDEX && toDEX:
		return domain.DirSell
	default:
		return domain.DirTransfer
	}
}

// ClassifyDirectionFor is the same DEX-membership logic relative to one wallet
// being analyzed, splitting plain transfers into inbound and outbound legs
func ClassifyDirectionFor(holder, from, to string, dex *domain.KnownAddressSet) domain.Direction {
	h := domain.NormalizeAddress(holder)
	fromDEX := dex.Contains(from)
	toDEX := dex.Contains(to)

	if domain.NormalizeAddress(to) == h {
		if fromDEX {
			return domain.DirBuy
		}
		return domain.DirTransferIn
	}
	if domain.NormalizeAddress(from) == h {
		if toDEX {
			return domain.DirSell
		}
		return domain.DirTransferOut
	}
	return domain.DirTransfer
}

// Rates derived from a profile. acquired==0 degenerates to full retention and
// zero sell rate so fresh wallets with only outbound history don't divide by zero
func rates(bought, received, sold, balance float64) (retention, sellRate float64) {
	acquired := bought + received
	if acquired <= 0 {
		return 100, 0
	}
	return balance / acquired * 100, sold / acquired * 100
}

// RetentionPct returns the display retention clamped to [0,100]. Raw arithmetic
// can exceed 100 when the balance estimate drifts from transfers outside the
// observed window
func RetentionPct(bought, received, sold, sent, balance float64) float64 {
	retention, _ := rates(bought, received, sold, balance)
	if retention > 100 {
		return 100
	}
	if retention < 0 {
		return 0
	}
	return retention
}

// ClassifyBehavior runs the archetype decision table. The branch order is
// load-bearing: boundary values (exactly 80% sell rate, exactly 7 days)
// resolve differently if reordered
func ClassifyBehavior(holdingDays int, bought, received, sold, sent, currentBalance float64) (domain.Archetype, string) {
	retention, sellRate := rates(bought, received, sold, currentBalance)

	days := float64(holdingDays)

	switch {
	case days < 7 && sellRate > 80:
		return domain.ArchetypeImmediateLiquidator, "Sold most tokens within days of acquiring them"
	case days < 7:
		return domain.ArchetypeNewHolder, "Acquired tokens less than a week ago"
	case sellRate > 80 && days < 14:
		return domain.ArchetypeImmediateLiquidator, "Sold most tokens shortly after acquiring them"
	case days >= 30 && retention >= 90:
		return domain.ArchetypeDiamondHands, "Long-term holder retaining nearly all tokens"
	case bought > 2*sold && days >= 14:
		return domain.ArchetypeAccumulator, "Keeps buying significantly more than selling"
	case sold > 0 && bought > 0 && sellRate >= 30 && sellRate <= 70:
		return domain.ArchetypeActiveTrader, "Trades in and out with balanced buys and sells"
	case sellRate > 20 && sellRate < 80 && currentBalance > 0:
		return domain.ArchetypePartialSeller, "Took profits on part of the position, still holding the rest"
	case retention >= 70:
		return domain.ArchetypeDiamondHands, "Retains most acquired tokens"
	default:
		return domain.ArchetypeActiveTrader, "Frequent transfer activity without a dominant pattern"
	}
}

// HoldingBucket buckets a holding duration for distribution summaries
func HoldingBucket(holdingDays int) string {
	switch {
	case holdingDays < 7:
		return "<7d"
	case holdingDays < 30:
		return "7-30d"
	case holdingDays < 90:
		return "1-3m"
	default:
		return "3m+"
	}
}

// Acquisition reports how a wallet first obtained the token
func Acquisition(bought, received float64) domain.AcquisitionMethod {
	switch {
	case bought > 0 && received > 0:
		return domain.AcquiredMixed
	case received > 0:
		return domain.AcquiredReceived
	default:
		return domain.AcquiredBought
	}
}
