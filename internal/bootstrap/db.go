package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/projectsanctuary/sanctuary/config"
	"github.com/projectsanctuary/sanctuary/internal/storage/postgres"
)

// DBOptions configures the pgx pool behind the profile repository.
type DBOptions struct {
	DSN       string
	MaxConns  int32
	ConnectTO time.Duration
	PingTO    time.Duration
}

// DBOptionsFrom maps the hosted store settings onto pool options.
func DBOptionsFrom(cfg config.DatabaseConfig) DBOptions {
	opt := DBOptions{ConnectTO: cfg.ConnectTimeout}
	if cfg.Enabled() {
		opt.DSN = postgres.DSN(&cfg)
	}
	if cfg.MaxConns > 0 {
		opt.MaxConns = int32(cfg.MaxConns)
	}
	return opt
}

func OpenDB(ctx context.Context, opt DBOptions) (*pgxpool.Pool, error) {
	if opt.DSN == "" {
		return nil, fmt.Errorf("hosted store is not configured: set DB_HOST or DB_DSN")
	}
	if opt.ConnectTO == 0 {
		opt.ConnectTO = 5 * time.Second
	}
	if opt.PingTO == 0 {
		opt.PingTO = 2 * time.Second
	}

	pcfg, err := pgxpool.ParseConfig(opt.DSN)
	if err != nil {
		return nil, fmt.Errorf("db config: %w", err)
	}
	if opt.MaxConns > 0 {
		pcfg.MaxConns = opt.MaxConns
	}
	pcfg.ConnConfig.ConnectTimeout = opt.ConnectTO

	cctx, cancel := context.WithTimeout(ctx, opt.ConnectTO)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(cctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	pctx, pcancel := context.WithTimeout(ctx, opt.PingTO)
	defer pcancel()

	if err := pool.Ping(pctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return pool, nil
}
