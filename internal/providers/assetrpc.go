package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tokenlens/internal/domain"
)

// AssetRPC talks to an alchemy-style JSON-RPC asset-transfer API for one chain
type AssetRPC struct {
	client   *Client
	url      string
	contract string
	chain    domain.Chain
	chainID  uint32
	decimals int32
}

func NewAssetRPC(client *Client, url, contract string, chain domain.Chain, chainID uint32, decimals int32) *AssetRPC {
	return &AssetRPC{
		client:   client,
		url:      url,
		contract: contract,
		chain:    chain,
		chainID:  chainID,
		decimals: decimals,
	}
}

func (a *AssetRPC) name() string { return "asset_rpc_" + string(a.chain) }

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type assetTransferParams struct {
	ContractAddresses []string `json:"contractAddresses"`
	Category          []string `json:"category"`
	Order             string   `json:"order"`
	WithMetadata      bool     `json:"withMetadata"`
	MaxCount          string   `json:"maxCount"` // hex
	PageKey           string   `json:"pageKey,omitempty"`
}

type assetTransfer struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Hash        string `json:"hash"`
	RawContract struct {
		Value string `json:"value"` // hex raw amount
	} `json:"rawContract"`
	Metadata struct {
		BlockTimestamp string `json:"blockTimestamp"` // RFC3339
	} `json:"metadata"`
}

type assetTransferResult struct {
	Transfers []assetTransfer `json:"transfers"`
	PageKey   string          `json:"pageKey"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// RecentTransfers pulls ERC-20 transfers of the token contract newest first,
// following the page cursor up to the page cap or the requested limit
func (a *AssetRPC) RecentTransfers(ctx context.Context, limit int) ([]domain.TransferRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	perPage := limit
	if perPage > 1000 {
		perPage = 1000
	}

	var out []domain.TransferRecord
	pageKey := ""
	for page := 0; page < maxPages && len(out) < limit; page++ {
		params := assetTransferParams{
			ContractAddresses: []string{a.contract},
			Category:          []string{"erc20"},
			Order:             "desc",
			WithMetadata:      true,
			MaxCount:          fmt.Sprintf("0x%x", perPage),
			PageKey:           pageKey,
		}
		req := rpcRequest{
			JSONRPC: "2.0",
			ID:      1,
			Method:  "alchemy_getAssetTransfers",
			Params:  []any{params},
		}

		var resp rpcResponse
		if err := a.client.postJSON(ctx, a.name(), a.url, req, &resp); err != nil {
			return nil, err
		}
		if resp.Error != nil {
			return nil, fmt.Errorf("%w: rpc error %d: %s", ErrUpstream, resp.Error.Code, resp.Error.Message)
		}
		if len(resp.Result) == 0 {
			return nil, fmt.Errorf("%w: rpc response missing result", ErrMalformed)
		}

		var result assetTransferResult
		if err := json.Unmarshal(resp.Result, &result); err != nil {
			return nil, fmt.Errorf("%w: decode result: %v", ErrMalformed, err)
		}

		for _, tx := range result.Transfers {
			if len(out) >= limit {
				break
			}
			rec, err := a.normalize(tx)
			if err != nil {
				return nil, err
			}
			out = append(out, rec)
		}

		if result.PageKey == "" {
			break
		}
		pageKey = result.PageKey
	}
	return out, nil
}

func (a *AssetRPC) normalize(tx assetTransfer) (domain.TransferRecord, error) {
	if tx.From == "" || tx.To == "" || tx.Hash == "" {
		return domain.TransferRecord{}, fmt.Errorf("%w: transfer entry missing addresses", ErrMalformed)
	}
	ts, err := time.Parse(time.RFC3339, tx.Metadata.BlockTimestamp)
	if err != nil {
		return domain.TransferRecord{}, fmt.Errorf("%w: block timestamp %q", ErrMalformed, tx.Metadata.BlockTimestamp)
	}
	amount, err := domain.ParseTokenAmount(tx.RawContract.Value, a.decimals)
	if err != nil {
		return domain.TransferRecord{}, fmt.Errorf("%w: raw value: %v", ErrMalformed, err)
	}
	return domain.TransferRecord{
		FromAddress: tx.From,
		ToAddress:   tx.To,
		FromLower:   domain.NormalizeAddress(tx.From),
		ToLower:     domain.NormalizeAddress(tx.To),
		Amount:      amount,
		Timestamp:   ts.Unix(),
		ChainID:     a.chainID,
		Chain:       a.chain,
		TxHash:      tx.Hash,
	}, nil
}
