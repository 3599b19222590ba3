package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App       AppConfig       `yaml:"app"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Cache     CacheConfig     `yaml:"cache"`
	Warehouse WarehouseConfig `yaml:"warehouse"`
	Providers ProvidersConfig `yaml:"providers"`
	Token     TokenConfig     `yaml:"token"`
	API       APIConfig       `yaml:"api"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type AppConfig struct {
	InstanceID      string        `yaml:"instance_id"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // json|console
}

type RateLimitConfig struct {
	ByIP struct {
		RefillPerSec int `yaml:"refill_per_sec"`
		Burst        int `yaml:"burst"`
	} `yaml:"by_ip"`
}

type RedisConfig struct {
	Addr         string        `yaml:"addr"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	Prefix       string        `yaml:"prefix"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Response cache is a pure performance hint. Disabled -> every request
// recomputes from upstream
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
	Redis   RedisConfig   `yaml:"redis"`
}

// Optional ClickHouse with real holder-count history. Empty DSN -> the
// holder-metrics trend falls back to the synthetic curve
type WarehouseConfig struct {
	DSN string `yaml:"dsn"`
}

type ExplorerConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type AssetRPCConfig struct {
	URL string `yaml:"url"` // full endpoint incl. key
}

type QueryAPIConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	QueryID int64  `yaml:"query_id"` // campaign-baseline holder count query
}

type ProvidersConfig struct {
	Timeout       time.Duration  `yaml:"timeout"`
	DexScreener   string         `yaml:"dexscreener_base_url"`
	GeckoTerminal string         `yaml:"geckoterminal_base_url"`
	QueryAPI      QueryAPIConfig `yaml:"query_api"`
}

type PoolConfig struct {
	Address     string `yaml:"address"`
	DEX         string `yaml:"dex"`
	Pair        string `yaml:"pair"`
	FeeTier     string `yaml:"fee_tier"`
	GeckoNet    string `yaml:"gecko_network"`  // geckoterminal network slug
	ScreenerNet string `yaml:"screener_chain"` // dexscreener chain slug
}

type ChainConfig struct {
	Name         string         `yaml:"name"` // ethereum|base
	ChainID      uint32         `yaml:"chain_id"`
	Contract     string         `yaml:"contract"`
	Explorer     ExplorerConfig `yaml:"explorer"`
	AssetRPC     AssetRPCConfig `yaml:"asset_rpc"`
	Pools        []PoolConfig   `yaml:"pools"`
	DEXAddresses []string       `yaml:"dex_addresses"` // routers + pools, classified as liquidity infrastructure
}

type TokenConfig struct {
	Symbol         string        `yaml:"symbol"`
	Decimals       int32         `yaml:"decimals"`
	TotalSupply    float64       `yaml:"total_supply"` // token units, fixed
	CampaignStart  time.Time     `yaml:"campaign_start"`
	WhaleThreshold float64       `yaml:"whale_threshold"` // token units, inclusive
	WhaleTiers     WhaleTiers    `yaml:"whale_tiers"`
	TopHolders     int           `yaml:"top_holders"` // K for the behavior endpoint
	Chains         []ChainConfig `yaml:"chains"`
}

// Fixed absolute severity breakpoints, not statistically derived
type WhaleTiers struct {
	Large    float64 `yaml:"large"`
	Huge     float64 `yaml:"huge"`
	Colossal float64 `yaml:"colossal"`
}

type CORSConfig struct {
	Enabled bool     `yaml:"enabled"`
	Origins []string `yaml:"origins"`
	Methods []string `yaml:"methods"`
	Headers []string `yaml:"headers"`
}

type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	CORS         CORSConfig    `yaml:"cors"`
}

type APIConfig struct {
	HTTP HTTPConfig `yaml:"http"`
}

type PyroscopeConfig struct {
	Enabled    bool              `yaml:"enabled"`
	AppName    string            `yaml:"app_name"`
	ServerAddr string            `yaml:"server_addr"`
	AuthToken  string            `yaml:"auth_token"`
	Tags       map[string]string `yaml:"tags"`
}

type MetricsConfig struct {
	Pyroscope PyroscopeConfig `yaml:"pyroscope"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err = yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()

	if err = cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// API keys are usually passed via env in deployment, not committed to yaml
func (c *Config) applyEnv() {
	for i := range c.Token.Chains {
		ch := &c.Token.Chains[i]
		if v := os.Getenv("EXPLORER_API_KEY_" + ch.Name); v != "" {
			ch.Explorer.APIKey = v
		}
		if v := os.Getenv("ASSET_RPC_URL_" + ch.Name); v != "" {
			ch.AssetRPC.URL = v
		}
	}
	if v := os.Getenv("QUERY_API_KEY"); v != "" {
		c.Providers.QueryAPI.APIKey = v
	}
	if v := os.Getenv("WAREHOUSE_DSN"); v != "" {
		c.Warehouse.DSN = v
	}
}

func (c *Config) validate() error {
	if len(c.Token.Chains) == 0 {
		return fmt.Errorf("token.chains cannot be empty")
	}
	if c.Token.Decimals <= 0 {
		c.Token.Decimals = 18
	}
	if c.Token.TotalSupply <= 0 {
		return fmt.Errorf("token.total_supply must be positive")
	}
	if c.Token.CampaignStart.IsZero() {
		return fmt.Errorf("token.campaign_start is required")
	}
	if c.Token.WhaleThreshold <= 0 {
		return fmt.Errorf("token.whale_threshold must be positive")
	}
	if c.Token.TopHolders <= 0 {
		c.Token.TopHolders = 20
	}
	if c.Providers.Timeout <= 0 {
		c.Providers.Timeout = 10 * time.Second
	}
	for i := range c.Token.Chains {
		ch := &c.Token.Chains[i]
		if ch.Contract == "" {
			return fmt.Errorf("token.chains[%d].contract is required", i)
		}
		if ch.ChainID == 0 {
			return fmt.Errorf("token.chains[%d].chain_id is required", i)
		}
	}
	return nil
}

// DEXAddressSet flattens every chain's liquidity-infrastructure addresses
func (c *Config) DEXAddressSet() []string {
	var out []string
	for _, ch := range c.Token.Chains {
		out = append(out, ch.DEXAddresses...)
	}
	return out
}
