// Package numerator generates sequential codes backed by the
// sys_sequences table of the tenant database.
package numerator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"finsight/internal/core/tenant"
)

// Strategy selects how numbers are allocated.
type Strategy int

const (
	// StrategyStrict runs one UPSERT per number. Sequential without
	// gaps, suitable for accounting-facing codes.
	StrategyStrict Strategy = iota

	// StrategyCached reserves ranges in memory. Faster, but restarts
	// leave gaps.
	StrategyCached
)

// Config describes a code series.
type Config struct {
	// Prefix of the series, e.g. "CAT".
	Prefix string

	// IncludeYear puts the year between prefix and number.
	IncludeYear bool

	// PadWidth is the minimum digit count, default 5.
	PadWidth int

	// ResetPeriod restarts numbering: "year", "month" or "never".
	ResetPeriod string
}

// DefaultConfig returns a yearly-reset series for prefix.
func DefaultConfig(prefix string) Config {
	return Config{Prefix: prefix, IncludeYear: true, PadWidth: 5, ResetPeriod: "year"}
}

// Options tunes allocation.
type Options struct {
	Strategy  Strategy
	RangeSize int64
}

// Querier is the database surface the generator needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type cachedRange struct {
	current int64
	max     int64
}

// Generator issues codes from tenant-scoped sequences. With a nil
// static querier it resolves the pool from the tenant context, so one
// instance can serve every tenant; cache keys carry the tenant id to
// keep ranges apart.
type Generator struct {
	static Querier

	mu     sync.Mutex
	ranges map[string]*cachedRange
}

// New creates a generator bound to a fixed querier, for tests and
// single-database tools.
func New(querier Querier) *Generator {
	return &Generator{static: querier, ranges: make(map[string]*cachedRange)}
}

// NewFromContext creates a generator that takes the pool from the
// tenant context on every call.
func NewFromContext() *Generator {
	return &Generator{ranges: make(map[string]*cachedRange)}
}

func (g *Generator) querier(ctx context.Context) Querier {
	if g.static != nil {
		return g.static
	}
	return tenant.MustGetPool(ctx)
}

// Next generates the next code of the series for the given period.
func (g *Generator) Next(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error) {
	if g == nil {
		return "", fmt.Errorf("numerator is not initialized")
	}
	if opts == nil {
		opts = &Options{Strategy: StrategyStrict}
	}

	key := seriesKey(cfg, period)

	var (
		num int64
		err error
	)
	switch opts.Strategy {
	case StrategyCached:
		num, err = g.nextCached(ctx, key, opts.RangeSize)
	default:
		num, err = g.nextStrict(ctx, key)
	}
	if err != nil {
		return "", err
	}
	return formatCode(cfg, period, num), nil
}

func (g *Generator) nextStrict(ctx context.Context, key string) (int64, error) {
	var num int64
	err := g.querier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
		RETURNING current_val
	`, key).Scan(&num)
	if err != nil {
		return 0, fmt.Errorf("next sequence value: %w", err)
	}
	return num, nil
}

func (g *Generator) nextCached(ctx context.Context, key string, rangeSize int64) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	cacheKey := g.cacheKey(ctx, key)
	rng, ok := g.ranges[cacheKey]
	if !ok {
		rng = &cachedRange{}
		g.ranges[cacheKey] = rng
	}

	if rng.current >= rng.max {
		size := rangeSize
		if size <= 0 {
			size = 50
		}

		// current_val holds the last value of the reserved range, so the
		// usable numbers are (newMax-size, newMax].
		var newMax int64
		err := g.querier(ctx).QueryRow(ctx, `
			INSERT INTO sys_sequences (key, current_val)
			VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + $2
			RETURNING current_val
		`, key, size).Scan(&newMax)
		if err != nil {
			return 0, fmt.Errorf("reserve sequence range: %w", err)
		}
		rng.current = newMax - size
		rng.max = newMax
	}

	rng.current++
	return rng.current, nil
}

// SetNext forces the series position, used by migrations. The cached
// range for the series is dropped.
func (g *Generator) SetNext(ctx context.Context, cfg Config, period time.Time, value int64) error {
	key := seriesKey(cfg, period)

	var result int64
	err := g.querier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = $2
		RETURNING current_val
	`, key, value).Scan(&result)

	g.mu.Lock()
	delete(g.ranges, g.cacheKey(ctx, key))
	g.mu.Unlock()
	return err
}

func (g *Generator) cacheKey(ctx context.Context, key string) string {
	if g.static != nil {
		return key
	}
	if tenantID := tenant.GetTenantID(ctx); tenantID != "" {
		return tenantID + ":" + key
	}
	return key
}

func seriesKey(cfg Config, period time.Time) string {
	switch cfg.ResetPeriod {
	case "month":
		return cfg.Prefix + "_" + period.Format("2006_01")
	case "year":
		return cfg.Prefix + "_" + period.Format("2006")
	default:
		return cfg.Prefix
	}
}

func formatCode(cfg Config, period time.Time, num int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 5
	}
	if cfg.IncludeYear {
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("2006"), padWidth, num)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, num)
}
