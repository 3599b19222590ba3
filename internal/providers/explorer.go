package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"tokenlens/internal/domain"
)

// Explorer talks to an etherscan-style block explorer API for one chain
type Explorer struct {
	client   *Client
	baseURL  string
	apiKey   string
	contract string
	chain    domain.Chain
	chainID  uint32
	decimals int32
}

func NewExplorer(client *Client, baseURL, apiKey, contract string, chain domain.Chain, chainID uint32, decimals int32) *Explorer {
	return &Explorer{
		client:   client,
		baseURL:  baseURL,
		apiKey:   apiKey,
		contract: contract,
		chain:    chain,
		chainID:  chainID,
		decimals: decimals,
	}
}

func (e *Explorer) name() string { return "explorer_" + string(e.chain) }

type explorerEnvelope struct {
	Status  string `json:"status"` // "1" ok, "0" error
	Message string `json:"message"`
}

type explorerTokenTx struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Value     string `json:"value"` // raw integer string
	TimeStamp string `json:"timeStamp"`
	Hash      string `json:"hash"`
}

type explorerTokenTxResponse struct {
	explorerEnvelope
	Result []explorerTokenTx `json:"result"`
}

// TokenTransfers returns the most recent transfers of the token contract,
// newest first, already normalized to token units
func (e *Explorer) TokenTransfers(ctx context.Context, limit int) ([]domain.TransferRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	q := url.Values{}
	q.Set("module", "account")
	q.Set("action", "tokentx")
	q.Set("contractaddress", e.contract)
	q.Set("page", "1")
	q.Set("offset", strconv.Itoa(limit))
	q.Set("sort", "desc")
	q.Set("apikey", e.apiKey)

	var resp explorerTokenTxResponse
	if err := e.client.getJSON(ctx, e.name(), e.baseURL+"?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "1" {
		// "0" with message "No transactions found" is a legitimate empty result
		if resp.Message == "No transactions found" {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: explorer status %q message %q", ErrUpstream, resp.Status, resp.Message)
	}

	out := make([]domain.TransferRecord, 0, len(resp.Result))
	for _, tx := range resp.Result {
		if tx.From == "" || tx.To == "" || tx.Hash == "" {
			return nil, fmt.Errorf("%w: tokentx entry missing addresses", ErrMalformed)
		}
		ts, err := strconv.ParseInt(tx.TimeStamp, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: tokentx timestamp %q", ErrMalformed, tx.TimeStamp)
		}
		amount, err := domain.ParseTokenAmount(tx.Value, e.decimals)
		if err != nil {
			return nil, fmt.Errorf("%w: tokentx value: %v", ErrMalformed, err)
		}
		out = append(out, domain.TransferRecord{
			FromAddress: tx.From,
			ToAddress:   tx.To,
			FromLower:   domain.NormalizeAddress(tx.From),
			ToLower:     domain.NormalizeAddress(tx.To),
			Amount:      amount,
			Timestamp:   ts,
			ChainID:     e.chainID,
			Chain:       e.chain,
			TxHash:      tx.Hash,
		})
	}
	return out, nil
}

type explorerHolder struct {
	TokenHolderAddress  string `json:"TokenHolderAddress"`
	TokenHolderQuantity string `json:"TokenHolderQuantity"` // raw integer string
}

type explorerHolderListResponse struct {
	explorerEnvelope
	Result []explorerHolder `json:"result"`
}

// HolderList pages through the explorer holder list, capped at maxPages so a
// misbehaving cursor can't stall the request
func (e *Explorer) HolderList(ctx context.Context, pageSize int) ([]domain.HolderBalance, error) {
	if pageSize <= 0 {
		pageSize = 100
	}

	var out []domain.HolderBalance
	for page := 1; page <= maxPages; page++ {
		q := url.Values{}
		q.Set("module", "token")
		q.Set("action", "tokenholderlist")
		q.Set("contractaddress", e.contract)
		q.Set("page", strconv.Itoa(page))
		q.Set("offset", strconv.Itoa(pageSize))
		q.Set("apikey", e.apiKey)

		var resp explorerHolderListResponse
		if err := e.client.getJSON(ctx, e.name(), e.baseURL+"?"+q.Encode(), nil, &resp); err != nil {
			return nil, err
		}
		if resp.Status != "1" {
			return nil, fmt.Errorf("%w: holder list status %q message %q", ErrUpstream, resp.Status, resp.Message)
		}

		for _, h := range resp.Result {
			if h.TokenHolderAddress == "" {
				return nil, fmt.Errorf("%w: holder entry missing address", ErrMalformed)
			}
			balance, err := domain.ParseTokenAmount(h.TokenHolderQuantity, e.decimals)
			if err != nil {
				return nil, fmt.Errorf("%w: holder quantity: %v", ErrMalformed, err)
			}
			out = append(out, domain.HolderBalance{
				Address: h.TokenHolderAddress,
				Balance: balance,
			})
		}

		if len(resp.Result) < pageSize {
			break // last page
		}
	}
	return out, nil
}

type explorerCountResponse struct {
	explorerEnvelope
	Result string `json:"result"`
}

// HolderCount asks the explorer for the total holder count. Falls back to
// counting the capped holder list when the count action is unavailable
func (e *Explorer) HolderCount(ctx context.Context) (int64, error) {
	q := url.Values{}
	q.Set("module", "token")
	q.Set("action", "tokenholdercount")
	q.Set("contractaddress", e.contract)
	q.Set("apikey", e.apiKey)

	var resp explorerCountResponse
	err := e.client.getJSON(ctx, e.name(), e.baseURL+"?"+q.Encode(), nil, &resp)
	if err == nil && resp.Status == "1" {
		n, perr := strconv.ParseInt(resp.Result, 10, 64)
		if perr != nil {
			return 0, fmt.Errorf("%w: holder count %q", ErrMalformed, resp.Result)
		}
		return n, nil
	}

	holders, lerr := e.HolderList(ctx, 100)
	if lerr != nil {
		if err != nil {
			return 0, err
		}
		return 0, lerr
	}
	return int64(len(holders)), nil
}
