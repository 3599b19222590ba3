package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	loggerCfg "gitlab.com/nevasik7/alerting/config"
	"gitlab.com/nevasik7/alerting/logger"

	"tokenlens/internal/aggregate"
	"tokenlens/internal/config"
	"tokenlens/internal/domain"
)

func newTestLogger() logger.Logger {
	return logger.New(loggerCfg.LoggerCfg{Level: "error", Format: "json"})
}

type stubHolders struct {
	list    []domain.HolderBalance
	listErr error
	count   int64
	cntErr  error
}

func (s *stubHolders) HolderList(ctx context.Context, pageSize int) ([]domain.HolderBalance, error) {
	return s.list, s.listErr
}

func (s *stubHolders) HolderCount(ctx context.Context) (int64, error) {
	return s.count, s.cntErr
}

func fixedNow() time.Time {
	return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
}

func testConfig() *config.Config {
	return &config.Config{
		Token: config.TokenConfig{
			Symbol:         "TKN",
			Decimals:       18,
			TotalSupply:    1_000_000_000,
			CampaignStart:  time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			WhaleThreshold: 50_000,
			WhaleTiers:     config.WhaleTiers{Large: 50_000, Huge: 250_000, Colossal: 1_000_000},
			TopHolders:     10,
		},
	}
}

func transfersFetch(records []domain.TransferRecord, err error) TransferFetch {
	return func(ctx context.Context, limit int) ([]domain.TransferRecord, error) {
		return records, err
	}
}

func stubTransfer(from, to string, amount float64, ts int64, chain domain.Chain) domain.TransferRecord {
	return domain.TransferRecord{
		FromAddress: from,
		ToAddress:   to,
		FromLower:   domain.NormalizeAddress(from),
		ToLower:     domain.NormalizeAddress(to),
		Amount:      amount,
		Timestamp:   ts,
		Chain:       chain,
		TxHash:      "0xhash",
	}
}

func newTestService(t *testing.T, d Deps) *Service {
	t.Helper()
	if d.Log == nil {
		d.Log = newTestLogger()
	}
	if d.Cfg == nil {
		d.Cfg = testConfig()
	}
	if d.DEXSet == nil {
		d.DEXSet = domain.NewKnownAddressSet([]string{"0xpool"})
	}
	if d.Now == nil {
		d.Now = fixedNow
	}
	return New(d)
}

func TestTransactions_OneChainFailsStillSucceeds(t *testing.T) {
	t.Parallel()

	ok := []domain.TransferRecord{
		stubTransfer("0xPool", "0xA", 10, 100, domain.ChainEthereum),
		stubTransfer("0xA", "0xPool", 20, 200, domain.ChainEthereum),
		stubTransfer("0xA", "0xB", 30, 300, domain.ChainEthereum),
		stubTransfer("0xPool", "0xC", 40, 400, domain.ChainEthereum),
		stubTransfer("0xC", "0xD", 50, 500, domain.ChainEthereum),
	}

	svc := newTestService(t, Deps{
		Chains: []ChainSource{
			{Chain: domain.ChainEthereum, Transfers: []TransferFetch{transfersFetch(ok, nil)}, Holders: &stubHolders{}},
			{Chain: domain.ChainBase, Transfers: []TransferFetch{transfersFetch(nil, errors.New("rpc down"))}, Holders: &stubHolders{}},
		},
	})

	got := svc.Transactions(context.Background(), 50)
	require.True(t, got.Success, "a failing chain degrades, it does not fail the call")
	require.Len(t, got.Transactions, 5)
	assert.Equal(t, []string{"base"}, got.DegradedChains)

	// newest first, classified
	assert.Equal(t, int64(500), got.Transactions[0].Timestamp)
	assert.Equal(t, domain.DirTransfer, got.Transactions[0].Type)
	assert.Equal(t, domain.DirBuy, got.Transactions[1].Type)  // pool -> 0xC
	assert.Equal(t, domain.DirSell, got.Transactions[3].Type) // 0xA -> pool
}

func TestTransactions_FallbackSourceUsed(t *testing.T) {
	t.Parallel()

	fallback := []domain.TransferRecord{stubTransfer("0xA", "0xB", 1, 100, domain.ChainEthereum)}
	svc := newTestService(t, Deps{
		Chains: []ChainSource{{
			Chain: domain.ChainEthereum,
			Transfers: []TransferFetch{
				transfersFetch(nil, errors.New("explorer down")),
				transfersFetch(fallback, nil),
			},
			Holders: &stubHolders{},
		}},
	})

	got := svc.Transactions(context.Background(), 10)
	require.Len(t, got.Transactions, 1)
	assert.Empty(t, got.DegradedChains)
}

func TestHolders_MergedRankedAndPctOfSupply(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, Deps{
		Chains: []ChainSource{
			{Chain: domain.ChainEthereum, Holders: &stubHolders{list: []domain.HolderBalance{
				{Address: "0xBig", Balance: 10_000_000},
				{Address: "0xPool", Balance: 99_000_000}, // DEX infra, excluded
				{Address: "0xSmall", Balance: 1_000},
			}}},
			{Chain: domain.ChainBase, Holders: &stubHolders{list: []domain.HolderBalance{
				{Address: "0xMid", Balance: 5_000_000},
			}}},
		},
	})

	got := svc.Holders(context.Background(), 2)
	require.True(t, got.Success)
	require.Len(t, got.Holders, 2)

	assert.Equal(t, 1, got.Holders[0].Rank)
	assert.Equal(t, "0xBig", got.Holders[0].Address)
	assert.Equal(t, "0xbig", got.Holders[0].AddressLower)
	assert.InDelta(t, 1.0, got.Holders[0].PctOfSupply, 1e-9)
	assert.Equal(t, "0xMid", got.Holders[1].Address)
	assert.Equal(t, domain.ChainBase, got.Holders[1].Chain)
}

func TestHolders_BothChainsFailIsDegradedNotFatal(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, Deps{
		Chains: []ChainSource{
			{Chain: domain.ChainEthereum, Holders: &stubHolders{listErr: errors.New("down")}},
			{Chain: domain.ChainBase, Holders: &stubHolders{listErr: errors.New("down")}},
		},
	})

	got := svc.Holders(context.Background(), 10)
	assert.True(t, got.Success)
	assert.Empty(t, got.Holders)
	assert.Len(t, got.DegradedChains, 2)
}

func TestMarketData_FallbackAndUnavailableSentinel(t *testing.T) {
	t.Parallel()

	okSnap := domain.PoolSnapshot{
		PoolAddress: "0xp1", Chain: domain.ChainEthereum, DEX: "uniswap_v3",
		Pair: "TKN/WETH", PriceUSD: 2, TVLUSD: 100, Volume24h: 10, Buys24h: 3, Sells24h: 1,
	}

	svc := newTestService(t, Deps{
		Pools: []Pool{
			{
				Address: "0xp1", Chain: domain.ChainEthereum, DEX: "uniswap_v3", Pair: "TKN/WETH",
				Fetches: []PoolFetch{
					func(ctx context.Context) (domain.PoolSnapshot, error) { return domain.PoolSnapshot{}, errors.New("primary 500") },
					func(ctx context.Context) (domain.PoolSnapshot, error) { return okSnap, nil },
				},
			},
			{
				Address: "0xp2", Chain: domain.ChainBase, DEX: "aerodrome", Pair: "TKN/WETH", FeeTier: "0.3%",
				Fetches: []PoolFetch{
					func(ctx context.Context) (domain.PoolSnapshot, error) { return domain.PoolSnapshot{}, errors.New("primary 500") },
					func(ctx context.Context) (domain.PoolSnapshot, error) { return domain.PoolSnapshot{}, errors.New("fallback 500") },
				},
			},
		},
	})

	got := svc.MarketData(context.Background())
	require.True(t, got.Success)
	require.Len(t, got.Pools, 2)

	assert.False(t, got.Pools[0].Unavailable)
	require.True(t, got.Pools[1].Unavailable, "all sources failed -> sentinel")
	assert.Zero(t, got.Pools[1].PriceUSD)
	assert.Zero(t, got.Pools[1].TVLUSD)

	assert.Equal(t, 100.0, got.Aggregate.TotalTVLUSD, "unavailable pool excluded from sums")
	assert.Equal(t, 2.0, got.Aggregate.VWAP)
	assert.Equal(t, 1, got.Aggregate.AvailablePools)
	assert.Equal(t, 1, got.Aggregate.UnavailablePools)
}

func TestWhaleActivity_ThresholdAndSentiment(t *testing.T) {
	t.Parallel()

	records := []domain.TransferRecord{
		stubTransfer("0xPool", "0xA", 300_000, 400, domain.ChainEthereum), // huge buy
		stubTransfer("0xB", "0xPool", 60_000, 300, domain.ChainEthereum),  // large sell
		stubTransfer("0xA", "0xB", 50_000, 200, domain.ChainEthereum),     // exactly threshold, included
		stubTransfer("0xA", "0xB", 49_999, 100, domain.ChainEthereum),     // below, excluded
	}

	svc := newTestService(t, Deps{
		Chains: []ChainSource{{
			Chain:     domain.ChainEthereum,
			Transfers: []TransferFetch{transfersFetch(records, nil)},
			Holders:   &stubHolders{},
		}},
	})

	got := svc.WhaleActivity(context.Background())
	require.True(t, got.Success)
	require.Len(t, got.Whales, 3)

	assert.Equal(t, "huge", got.Whales[0].Severity)
	assert.Equal(t, domain.DirBuy, got.Whales[0].Type)
	assert.Equal(t, "large", got.Whales[1].Severity)
	assert.Equal(t, 300_000.0, got.Totals.BuyVolume)
	assert.Equal(t, 60_000.0, got.Totals.SellVolume)
	assert.Equal(t, 50_000.0, got.Totals.TransferVolume)
	assert.Equal(t, "bullish", got.Sentiment)
}

func TestCampaignMetrics_CohortsAndGrowth(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	records := []domain.TransferRecord{
		// wallet A buys in week 1 and holds
		stubTransfer("0xPool", "0xA", 1000, start.AddDate(0, 0, 1).Unix(), domain.ChainEthereum),
		// wallet B buys in week 2 and exits completely
		stubTransfer("0xPool", "0xB", 500, start.AddDate(0, 0, 8).Unix(), domain.ChainEthereum),
		stubTransfer("0xB", "0xPool", 500, start.AddDate(0, 0, 9).Unix(), domain.ChainEthereum),
		// wallet C predates the campaign, out of scope
		stubTransfer("0xPool", "0xC", 100, start.AddDate(0, 0, -3).Unix(), domain.ChainEthereum),
	}

	svc := newTestService(t, Deps{
		Chains: []ChainSource{{
			Chain:     domain.ChainEthereum,
			Transfers: []TransferFetch{transfersFetch(records, nil)},
			Holders:   &stubHolders{count: 1500},
		}},
		Baseline: func(ctx context.Context) (int64, error) { return 1000, nil },
	})

	got := svc.CampaignMetrics(context.Background())
	require.True(t, got.Success)
	assert.Equal(t, 2, got.TotalWallets)

	total := 0
	for _, c := range got.WeeklyCohorts {
		total += c.Wallets
	}
	assert.Equal(t, got.TotalWallets, total, "cohort counts sum to analyzed wallets")
	assert.Equal(t, 1, got.WeeklyCohorts[0].Wallets)
	assert.Equal(t, 1, got.WeeklyCohorts[1].Wallets)

	assert.InDelta(t, 50.0, got.Retention.StillHoldingPct, 1e-9)
	assert.InDelta(t, 50.0, got.Retention.ExitedPct, 1e-9)

	assert.Equal(t, int64(1000), got.HolderGrowth.Baseline)
	assert.Equal(t, int64(1500), got.HolderGrowth.Current)
	assert.InDelta(t, 50.0, got.HolderGrowth.GrowthPct, 1e-9)
}

func TestHolderMetrics_SyntheticTrendFallback(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, Deps{
		Chains: []ChainSource{
			{Chain: domain.ChainEthereum, Holders: &stubHolders{count: 3000}},
			{Chain: domain.ChainBase, Holders: &stubHolders{cntErr: errors.New("down")}},
		},
	})

	got := svc.HolderMetrics(context.Background())
	require.True(t, got.Success)
	assert.Equal(t, int64(3000), got.Combined, "failed chain contributes zero")
	assert.Equal(t, int64(0), got.Chains[1].Holders)
	assert.False(t, got.TrendReal)
	require.Len(t, got.Trend, 12)
	assert.Equal(t, int64(3000), got.Trend[11].Holders)
	assert.Greater(t, got.Deltas.Change30d, got.Deltas.Change24h)
}

func TestHolderMetrics_WarehouseTrendPreferred(t *testing.T) {
	t.Parallel()

	real := []aggregate.TrendPoint{{Month: "2026-07", Holders: 900}, {Month: "2026-08", Holders: 1000}}
	svc := newTestService(t, Deps{
		Chains: []ChainSource{{Chain: domain.ChainEthereum, Holders: &stubHolders{count: 1000}}},
		History: func(ctx context.Context, chain domain.Chain, months int) ([]aggregate.TrendPoint, error) {
			return real, nil
		},
	})

	got := svc.HolderMetrics(context.Background())
	assert.True(t, got.TrendReal)
	assert.Equal(t, real, got.Trend)
}

func TestHolderBehavior_Distribution(t *testing.T) {
	t.Parallel()

	now := fixedNow()
	records := []domain.TransferRecord{
		// long-term full retention
		stubTransfer("0xPool", "0xDiamond", 1000, now.AddDate(0, 0, -45).Unix(), domain.ChainEthereum),
		// fresh wallet
		stubTransfer("0xPool", "0xNew", 200, now.AddDate(0, 0, -2).Unix(), domain.ChainEthereum),
	}
	holders := []domain.HolderBalance{
		{Address: "0xDiamond", Balance: 1000},
		{Address: "0xNew", Balance: 200},
	}

	svc := newTestService(t, Deps{
		Chains: []ChainSource{{
			Chain:     domain.ChainEthereum,
			Transfers: []TransferFetch{transfersFetch(records, nil)},
			Holders:   &stubHolders{list: holders},
		}},
	})

	got := svc.HolderBehavior(context.Background())
	require.True(t, got.Success)
	assert.Equal(t, 2, got.Analyzed)
	assert.Equal(t, 1, got.Distribution.ByArchetype[domain.ArchetypeDiamondHands])
	assert.Equal(t, 1, got.Distribution.ByArchetype[domain.ArchetypeNewHolder])
	assert.Equal(t, 1, got.Distribution.ByHolding["1-3m"])
	assert.Equal(t, 1, got.Distribution.ByHolding["<7d"])
	assert.Equal(t, 2, got.Distribution.ByAcquisition[domain.AcquiredBought])

	// records ranked by balance descending
	assert.Equal(t, "0xdiamond", got.Holders[0].Address)
	assert.Equal(t, 100.0, got.Holders[0].RetentionPct)
}
