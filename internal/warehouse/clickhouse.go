// Package warehouse reads real holder-count history from ClickHouse when a DSN
// is configured. Without it the holder-metrics trend falls back to the
// synthetic growth curve
package warehouse

import (
	"context"
	"fmt"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"

	"tokenlens/internal/aggregate"
	"tokenlens/internal/config"
	"tokenlens/internal/domain"
)

type Conn struct {
	native ch.Conn
}

func New(ctx context.Context, cfg *config.WarehouseConfig) (*Conn, error) {
	if cfg == nil || cfg.DSN == "" {
		return nil, nil // warehouse is optional
	}

	opts, err := ch.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed parse DSN ch, error=%w", err)
	}

	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	if opts.Compression == nil {
		opts.Compression = &ch.Compression{Method: ch.CompressionLZ4}
	}
	opts.ClientInfo = ch.ClientInfo{
		Products: []struct{ Name, Version string }{
			{Name: "tokenlens", Version: "0.1.0"},
		},
	}

	conn, err := ch.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed Open ch, error=%w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err = conn.Ping(pingCtx); err != nil {
		return nil, fmt.Errorf("failed ping ch, error=%w", err)
	}

	return &Conn{native: conn}, nil
}

// HolderCountHistory returns one point per month, oldest first, for the chain.
// Nil conn reports no history without an error
func (c *Conn) HolderCountHistory(ctx context.Context, chain domain.Chain, months int) ([]aggregate.TrendPoint, error) {
	if c == nil {
		return nil, nil
	}

	rows, err := c.native.Query(ctx, `
		SELECT formatDateTime(snapshot_month, '%Y-%m') AS month,
		       max(holder_count)                        AS holders
		FROM holder_counts
		WHERE chain = ?
		  AND snapshot_month >= date_sub(MONTH, ?, toStartOfMonth(now()))
		GROUP BY snapshot_month
		ORDER BY snapshot_month ASC
	`, string(chain), months)
	if err != nil {
		return nil, fmt.Errorf("holder count history query failed: %w", err)
	}
	defer rows.Close()

	var out []aggregate.TrendPoint
	for rows.Next() {
		var p aggregate.TrendPoint
		var holders uint64
		if err := rows.Scan(&p.Month, &holders); err != nil {
			return nil, fmt.Errorf("holder count history scan failed: %w", err)
		}
		p.Holders = int64(holders)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (c *Conn) Health(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.native.Ping(ctx)
}

func (c *Conn) Close() error {
	if c == nil {
		return nil
	}
	return c.native.Close()
}
