package providers

import (
	"context"
	"fmt"
	"strconv"

	"tokenlens/internal/domain"
)

// GeckoTerminal is the fallback pool-data source when dexscreener fails
type GeckoTerminal struct {
	client  *Client
	baseURL string
}

func NewGeckoTerminal(client *Client, baseURL string) *GeckoTerminal {
	return &GeckoTerminal{client: client, baseURL: baseURL}
}

type geckoPoolResponse struct {
	Data *struct {
		Attributes struct {
			BaseTokenPriceUSD string `json:"base_token_price_usd"`
			ReserveInUSD      string `json:"reserve_in_usd"`
			VolumeUSD         struct {
				H24 string `json:"h24"`
			} `json:"volume_usd"`
			Transactions struct {
				H24 struct {
					Buys  int64 `json:"buys"`
					Sells int64 `json:"sells"`
				} `json:"h24"`
			} `json:"transactions"`
		} `json:"attributes"`
	} `json:"data"`
}

// PoolData fetches one pool. network is the geckoterminal network slug
// (eth, base)
func (g *GeckoTerminal) PoolData(ctx context.Context, network, poolAddress string, chain domain.Chain, dex, pair, feeTier string) (domain.PoolSnapshot, error) {
	url := fmt.Sprintf("%s/api/v2/networks/%s/pools/%s", g.baseURL, network, poolAddress)

	var resp geckoPoolResponse
	if err := g.client.getJSON(ctx, "geckoterminal", url, nil, &resp); err != nil {
		return domain.PoolSnapshot{}, err
	}
	if resp.Data == nil {
		return domain.PoolSnapshot{}, fmt.Errorf("%w: pool %s has no data node", ErrMalformed, poolAddress)
	}

	attrs := resp.Data.Attributes
	price, err := strconv.ParseFloat(attrs.BaseTokenPriceUSD, 64)
	if err != nil {
		return domain.PoolSnapshot{}, fmt.Errorf("%w: base_token_price_usd %q", ErrMalformed, attrs.BaseTokenPriceUSD)
	}
	tvl, err := strconv.ParseFloat(attrs.ReserveInUSD, 64)
	if err != nil {
		return domain.PoolSnapshot{}, fmt.Errorf("%w: reserve_in_usd %q", ErrMalformed, attrs.ReserveInUSD)
	}
	volume, err := strconv.ParseFloat(attrs.VolumeUSD.H24, 64)
	if err != nil {
		return domain.PoolSnapshot{}, fmt.Errorf("%w: volume_usd.h24 %q", ErrMalformed, attrs.VolumeUSD.H24)
	}

	return domain.PoolSnapshot{
		PoolAddress: poolAddress,
		Chain:       chain,
		DEX:         dex,
		Pair:        pair,
		PriceUSD:    price,
		TVLUSD:      tvl,
		Volume24h:   volume,
		Buys24h:     attrs.Transactions.H24.Buys,
		Sells24h:    attrs.Transactions.H24.Sells,
		FeeTier:     feeTier,
	}, nil
}
