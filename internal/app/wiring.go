package app

import (
	"context"
	"fmt"
	"time"

	"github.com/grafana/pyroscope-go"
	"gitlab.com/nevasik7/alerting"
	lgcfg "gitlab.com/nevasik7/alerting/config"
	"gitlab.com/nevasik7/alerting/logger"

	httpapi "tokenlens/internal/api/http"
	"tokenlens/internal/cache"
	"tokenlens/internal/config"
	"tokenlens/internal/domain"
	"tokenlens/internal/metrics"
	"tokenlens/internal/providers"
	"tokenlens/internal/service"
	"tokenlens/internal/warehouse"
)

type Container struct {
	app *App

	// infra
	cache *cache.Cache
	wh    *warehouse.Conn

	// servers
	httpSrv *httpapi.Server

	// metrics
	profiler *pyroscope.Profiler

	cleanupF func()
}

func (c *Container) Start() error {
	return c.app.Start()
}

func (c *Container) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.app.Shutdown(ctx); err != nil {
		return fmt.Errorf("app shutdown is failed, error=%w", err)
	}

	if c.cleanupF != nil {
		c.cleanupF()
	}
	return nil
}

// Construct image app
func Build(ctx context.Context, cfg *config.Config) (*Container, func()) {
	lg := logger.New(lgcfg.LoggerCfg{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	lg.Info("Successfully initialize logger")

	profiler, err := metrics.InitPProf(cfg.App.InstanceID, &cfg.Metrics.Pyroscope)
	if err != nil {
		lg.Panicf("Pyroscope initialize failed: %v", err)
	}
	if profiler != nil {
		lg.Infof("Successfully initialize Pyroscope to %s as %s", cfg.Metrics.Pyroscope.ServerAddr, cfg.Metrics.Pyroscope.AppName)
	}

	// Response cache, optional
	var respCache *cache.Cache
	if cfg.Cache.Enabled {
		respCache, err = cache.New(ctx, &cfg.Cache)
		if err != nil {
			lg.Panicf("Failed to initialize redis cache: %v", err)
		}
		lg.Infof("Successfully initialize redis cache, addr=%s ttl=%s", cfg.Cache.Redis.Addr, cfg.Cache.TTL)
	}

	// Warehouse, optional
	wh, err := warehouse.New(ctx, &cfg.Warehouse)
	if err != nil {
		lg.Panicf("Failed to initialize clickhouse warehouse: %v", err)
	}
	if wh != nil {
		lg.Info("Successfully initialize clickhouse warehouse")
	}

	// Provider adapters
	client := providers.NewClient(cfg.Providers.Timeout)
	chains, pools := buildSources(client, cfg)
	lg.Infof("Successfully initialize providers for %d chains and %d pools", len(chains), len(pools))

	var baseline service.BaselineFetch
	if qa := cfg.Providers.QueryAPI; qa.BaseURL != "" && qa.QueryID != 0 {
		queryAPI := providers.NewQueryAPI(client, qa.BaseURL, qa.APIKey, qa.QueryID)
		baseline = queryAPI.BaselineHolderCount
		lg.Infof("Successfully initialize warehouse query API, query_id=%d", qa.QueryID)
	}

	var history service.HistoryFetch
	if wh != nil {
		history = wh.HolderCountHistory
	}

	// Service Layer
	stats := service.New(service.Deps{
		Log:      lg,
		Cfg:      cfg,
		DEXSet:   domain.NewKnownAddressSet(cfg.DEXAddressSet()),
		Chains:   chains,
		Pools:    pools,
		Baseline: baseline,
		History:  history,
		Cache:    respCache,
	})

	// HTTP Server
	httpSrv := httpapi.NewServer(&httpapi.ServerDeps{
		Logger: lg,
		Cfg:    cfg,
		Stats:  stats,
		Redis:  respCache.Client(),
	})
	lg.Info("Successfully initialize HTTP server")

	c := &Container{
		app:      NewApp(alerting.NewAlerting(lg, nil), httpSrv),
		cache:    respCache,
		wh:       wh,
		httpSrv:  httpSrv,
		profiler: profiler,
	}

	cleanupF := func() {
		ctxClean, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if c.profiler != nil {
			if err = c.profiler.Stop(); err != nil {
				lg.Errorf("Failed to stop profiler: %v", err)
			}
		}

		if err = httpSrv.Shutdown(ctxClean); err != nil {
			lg.Errorf("Failed to shutdown by cleanupF HTTP server: %v", err)
		}

		if err = wh.Close(); err != nil {
			lg.Errorf("Failed to close by cleanupF clickhouse warehouse: %v", err)
		}

		if err = respCache.Close(); err != nil {
			lg.Errorf("Failed to close by cleanupF redis cache: %v", err)
		}

		lg.Info("Successfully cleaned up dependency")
	}

	lg.Info("Successfully initialize Wiring")
	return c, cleanupF
}

// buildSources turns chain configs into per-chain transfer/holder sources and
// the flattened pool list with primary->fallback fetch chains
func buildSources(client *providers.Client, cfg *config.Config) ([]service.ChainSource, []service.Pool) {
	screener := providers.NewDexScreener(client, cfg.Providers.DexScreener)
	gecko := providers.NewGeckoTerminal(client, cfg.Providers.GeckoTerminal)

	var chains []service.ChainSource
	var pools []service.Pool

	for _, chainCfg := range cfg.Token.Chains {
		chain := domain.Chain(chainCfg.Name)

		explorer := providers.NewExplorer(client,
			chainCfg.Explorer.BaseURL, chainCfg.Explorer.APIKey,
			chainCfg.Contract, chain, chainCfg.ChainID, cfg.Token.Decimals)

		fetches := []service.TransferFetch{explorer.TokenTransfers}
		if chainCfg.AssetRPC.URL != "" {
			rpc := providers.NewAssetRPC(client,
				chainCfg.AssetRPC.URL, chainCfg.Contract,
				chain, chainCfg.ChainID, cfg.Token.Decimals)
			fetches = append(fetches, rpc.RecentTransfers)
		}

		chains = append(chains, service.ChainSource{
			Chain:     chain,
			ChainID:   chainCfg.ChainID,
			Transfers: fetches,
			Holders:   explorer,
		})

		for _, poolCfg := range chainCfg.Pools {
			poolCfg := poolCfg
			pools = append(pools, service.Pool{
				Address: poolCfg.Address,
				Chain:   chain,
				DEX:     poolCfg.DEX,
				Pair:    poolCfg.Pair,
				FeeTier: poolCfg.FeeTier,
				Fetches: []service.PoolFetch{
					func(ctx context.Context) (domain.PoolSnapshot, error) {
						return screener.PoolData(ctx, poolCfg.ScreenerNet, poolCfg.Address, chain, poolCfg.DEX, poolCfg.Pair, poolCfg.FeeTier)
					},
					func(ctx context.Context) (domain.PoolSnapshot, error) {
						return gecko.PoolData(ctx, poolCfg.GeckoNet, poolCfg.Address, chain, poolCfg.DEX, poolCfg.Pair, poolCfg.FeeTier)
					},
				},
			})
		}
	}

	return chains, pools
}
