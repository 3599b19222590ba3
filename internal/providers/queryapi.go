package providers

import (
	"context"
	"fmt"
)

// QueryAPI reads precomputed rows from a dune-style analytics warehouse API.
// Used for the campaign-start holder-count baseline
type QueryAPI struct {
	client  *Client
	baseURL string
	apiKey  string
	queryID int64
}

func NewQueryAPI(client *Client, baseURL, apiKey string, queryID int64) *QueryAPI {
	return &QueryAPI{client: client, baseURL: baseURL, apiKey: apiKey, queryID: queryID}
}

type queryResultsResponse struct {
	Result *struct {
		Rows []map[string]any `json:"rows"`
	} `json:"result"`
}

// BaselineHolderCount reads the latest result of the configured query. The
// query is expected to produce at least one row with a numeric "holders" column
func (q *QueryAPI) BaselineHolderCount(ctx context.Context) (int64, error) {
	if q.queryID == 0 {
		return 0, fmt.Errorf("%w: no baseline query configured", ErrUpstream)
	}
	url := fmt.Sprintf("%s/api/v1/query/%d/results", q.baseURL, q.queryID)
	headers := map[string]string{"X-Dune-API-Key": q.apiKey}

	var resp queryResultsResponse
	if err := q.client.getJSON(ctx, "query_api", url, headers, &resp); err != nil {
		return 0, err
	}
	if resp.Result == nil || len(resp.Result.Rows) == 0 {
		return 0, fmt.Errorf("%w: query result has no rows", ErrMalformed)
	}

	v, ok := resp.Result.Rows[0]["holders"]
	if !ok {
		return 0, fmt.Errorf("%w: query row missing holders column", ErrMalformed)
	}
	f, ok := v.(float64) // JSON numbers decode as float64
	if !ok {
		return 0, fmt.Errorf("%w: holders column is %T, want number", ErrMalformed, v)
	}
	return int64(f), nil
}
