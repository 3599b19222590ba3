package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenlens/internal/domain"
)

func newAssetRPCFor(t *testing.T, handler http.HandlerFunc) *AssetRPC {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAssetRPC(NewClient(2*time.Second), srv.URL, "0xContract", domain.ChainBase, 8453, 18)
}

func TestAssetRPC_RecentTransfers(t *testing.T) {
	t.Parallel()

	rpc := newAssetRPCFor(t, func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alchemy_getAssetTransfers", req.Method)

		fmt.Fprint(w, `{"result":{"transfers":[
			{"from":"0xAaa","to":"0xBbb","hash":"0x9",
			 "rawContract":{"value":"0x56bc75e2d63100000"},
			 "metadata":{"blockTimestamp":"2026-08-01T10:00:00Z"}}
		],"pageKey":""}}`)
	})

	got, err := rpc.RecentTransfers(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 100.0, got[0].Amount, 1e-9)
	assert.Equal(t, domain.ChainBase, got[0].Chain)
	assert.Equal(t, uint32(8453), got[0].ChainID)

	ts := time.Unix(got[0].Timestamp, 0).UTC()
	assert.Equal(t, 2026, ts.Year())
}

func TestAssetRPC_RecentTransfers_CursorCapped(t *testing.T) {
	t.Parallel()

	var calls int
	rpc := newAssetRPCFor(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		// keep handing out a cursor: the adapter must stop at the page cap
		fmt.Fprint(w, `{"result":{"transfers":[
			{"from":"0xAaa","to":"0xBbb","hash":"0x9",
			 "rawContract":{"value":"0xde0b6b3a7640000"},
			 "metadata":{"blockTimestamp":"2026-08-01T10:00:00Z"}}
		],"pageKey":"next"}}`)
	})

	got, err := rpc.RecentTransfers(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, maxPages, calls)
	assert.Len(t, got, maxPages)
}

func TestAssetRPC_RecentTransfers_RPCError(t *testing.T) {
	t.Parallel()

	rpc := newAssetRPCFor(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"code":-32000,"message":"capacity exceeded"}}`)
	})

	_, err := rpc.RecentTransfers(context.Background(), 10)
	assert.True(t, errors.Is(err, ErrUpstream))
}

func TestAssetRPC_RecentTransfers_MissingResult(t *testing.T) {
	t.Parallel()

	rpc := newAssetRPCFor(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})

	_, err := rpc.RecentTransfers(context.Background(), 10)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestAssetRPC_RecentTransfers_BadTimestamp(t *testing.T) {
	t.Parallel()

	rpc := newAssetRPCFor(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result":{"transfers":[
			{"from":"0xAaa","to":"0xBbb","hash":"0x9",
			 "rawContract":{"value":"0x1"},
			 "metadata":{"blockTimestamp":"not-a-time"}}
		]}}`)
	})

	_, err := rpc.RecentTransfers(context.Background(), 10)
	assert.True(t, errors.Is(err, ErrMalformed))
}
