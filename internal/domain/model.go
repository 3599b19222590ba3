package domain

// Chain is the network a record was observed on
type Chain string

const (
	ChainEthereum Chain = "ethereum"
	ChainBase     Chain = "base"
)

// Normalized token transfer produced by a provider adapter.
// Amount is already converted from the raw 18-decimals integer to token units
type TransferRecord struct {
	FromAddress string  `json:"from"`       // original case from upstream
	ToAddress   string  `json:"to"`         // original case from upstream
	FromLower   string  `json:"from_lower"` // lowercase, for set membership
	ToLower     string  `json:"to_lower"`
	Amount      float64 `json:"amount"` // token units
	Timestamp   int64   `json:"timestamp"`
	ChainID     uint32  `json:"chain_id"`
	Chain       Chain   `json:"chain"`
	TxHash      string  `json:"tx_hash"`
}

// One entry of an explorer holder list
type HolderBalance struct {
	Address string  `json:"address"`
	Balance float64 `json:"balance"` // token units
}

// Running per-wallet view built by folding TransferRecords within one request.
// Never persisted, recomputed fresh each call
type WalletProfile struct {
	Address        string  `json:"address"` // lowercase
	Chain          Chain   `json:"chain"`
	FirstSeen      int64   `json:"first_seen"` // min timestamp among inbound legs
	TotalBought    float64 `json:"total_bought"`
	TotalReceived  float64 `json:"total_received"`
	TotalSold      float64 `json:"total_sold"`
	TotalSent      float64 `json:"total_sent"`
	CurrentBalance float64 `json:"current_balance"`
	BalanceIsExact bool    `json:"-"` // true when taken from a holder list, false when estimated
}

// TotalAcquired is bought plus received
func (p *WalletProfile) TotalAcquired() float64 {
	return p.TotalBought + p.TotalReceived
}

type Direction string

const (
	DirBuy         Direction = "buy"
	DirSell        Direction = "sell"
	DirTransfer    Direction = "transfer"
	DirTransferIn  Direction = "transfer_in"
	DirTransferOut Direction = "transfer_out"
)

type Archetype string

const (
	ArchetypeDiamondHands        Archetype = "diamond_hands"
	ArchetypeAccumulator         Archetype = "accumulator"
	ArchetypeActiveTrader        Archetype = "active_trader"
	ArchetypePartialSeller       Archetype = "partial_seller"
	ArchetypeImmediateLiquidator Archetype = "immediate_liquidator"
	ArchetypeNewHolder           Archetype = "new_holder"
)

type AcquisitionMethod string

const (
	AcquiredBought   AcquisitionMethod = "bought"
	AcquiredReceived AcquisitionMethod = "received"
	AcquiredMixed    AcquisitionMethod = "mixed"
)

// Read-only classified view over a WalletProfile.
// BehaviorType is a pure function of the profile numbers, no hidden state
type HolderBehaviorRecord struct {
	Address           string            `json:"address"`
	Chain             Chain             `json:"chain"`
	BehaviorType      Archetype         `json:"behavior_type"`
	Description       string            `json:"description"`
	HoldingDays       int               `json:"holding_days"`
	HoldingBucket     string            `json:"holding_bucket"`
	AcquisitionMethod AcquisitionMethod `json:"acquisition_method"`
	RetentionPct      float64           `json:"retention_pct"` // clamped to [0,100]
	CurrentBalance    float64           `json:"current_balance"`
}

// Snapshot of one liquidity pool from a price provider.
// Unavailable=true means every upstream source for this pool failed; all
// numeric fields are zero then and the snapshot is excluded from aggregate sums
type PoolSnapshot struct {
	PoolAddress string  `json:"pool_address"`
	Chain       Chain   `json:"chain"`
	DEX         string  `json:"dex"`
	Pair        string  `json:"pair"`
	PriceUSD    float64 `json:"price_usd"`
	TVLUSD      float64 `json:"tvl_usd"`
	Volume24h   float64 `json:"volume_24h_usd"`
	Buys24h     int64   `json:"buys_24h"`
	Sells24h    int64   `json:"sells_24h"`
	FeeTier     string  `json:"fee_tier"`
	Unavailable bool    `json:"unavailable"`
}

// UnavailablePool is the zero-valued sentinel for a pool all sources failed for
func UnavailablePool(poolAddress string, chain Chain, dex, pair, feeTier string) PoolSnapshot {
	return PoolSnapshot{
		PoolAddress: poolAddress,
		Chain:       chain,
		DEX:         dex,
		Pair:        pair,
		FeeTier:     feeTier,
		Unavailable: true,
	}
}
