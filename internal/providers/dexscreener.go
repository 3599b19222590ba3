package providers

import (
	"context"
	"fmt"
	"strconv"

	"tokenlens/internal/domain"
)

// DexScreener fetches pool price/liquidity/volume from the dexscreener pairs API
type DexScreener struct {
	client  *Client
	baseURL string
}

func NewDexScreener(client *Client, baseURL string) *DexScreener {
	return &DexScreener{client: client, baseURL: baseURL}
}

type screenerPair struct {
	PriceUSD  string `json:"priceUsd"`
	Liquidity struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	Volume struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
	Txns struct {
		H24 struct {
			Buys  int64 `json:"buys"`
			Sells int64 `json:"sells"`
		} `json:"h24"`
	} `json:"txns"`
}

type screenerResponse struct {
	Pairs []screenerPair `json:"pairs"`
}

// PoolData fetches one pool. chainSlug is the dexscreener chain identifier
// (ethereum, base)
func (d *DexScreener) PoolData(ctx context.Context, chainSlug, poolAddress string, chain domain.Chain, dex, pair, feeTier string) (domain.PoolSnapshot, error) {
	url := fmt.Sprintf("%s/latest/dex/pairs/%s/%s", d.baseURL, chainSlug, poolAddress)

	var resp screenerResponse
	if err := d.client.getJSON(ctx, "dexscreener", url, nil, &resp); err != nil {
		return domain.PoolSnapshot{}, err
	}
	if len(resp.Pairs) == 0 {
		return domain.PoolSnapshot{}, fmt.Errorf("%w: no pairs for pool %s", ErrMalformed, poolAddress)
	}

	p := resp.Pairs[0]
	price, err := strconv.ParseFloat(p.PriceUSD, 64)
	if err != nil {
		return domain.PoolSnapshot{}, fmt.Errorf("%w: priceUsd %q", ErrMalformed, p.PriceUSD)
	}

	return domain.PoolSnapshot{
		PoolAddress: poolAddress,
		Chain:       chain,
		DEX:         dex,
		Pair:        pair,
		PriceUSD:    price,
		TVLUSD:      p.Liquidity.USD,
		Volume24h:   p.Volume.H24,
		Buys24h:     p.Txns.H24.Buys,
		Sells24h:    p.Txns.H24.Sells,
		FeeTier:     feeTier,
	}, nil
}
