package pricing

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nordicgem/diamond-indexer/internal/adapter"
	"github.com/nordicgem/diamond-indexer/internal/domain"
	"github.com/nordicgem/diamond-indexer/internal/logger"
	"github.com/nordicgem/diamond-indexer/internal/store/schema"
	"github.com/nordicgem/diamond-indexer/internal/tiering"
)

// TierStore is the slice of the persistence layer the calculator needs
type TierStore interface {
	// ListMarkupIntervals retrieves the markup ladder for a feed type ordered
	// by ascending lower bound
	ListMarkupIntervals(ctx context.Context, feedType domain.FeedType) ([]*schema.MarkupInterval, error)
	// ReplaceMarkupIntervals atomically swaps the markup ladder for a feed type
	ReplaceMarkupIntervals(ctx context.Context, feedType domain.FeedType, intervals []*schema.MarkupInterval) error
}

// DefaultIntervals returns the launch-default markup ladder: nine carat bands
// from 0 to 150 with no markup applied. Used to seed a fresh database and as
// the in-memory fallback when no ladder is configured, so an import never
// fails solely because pricing configuration is absent.
func DefaultIntervals() []tiering.Interval {
	return []tiering.Interval{
		{Min: 0, Max: 0.5, Multiplier: 1.0},
		{Min: 0.5, Max: 0.7, Multiplier: 1.0},
		{Min: 0.7, Max: 1, Multiplier: 1.0},
		{Min: 1, Max: 1.1, Multiplier: 1.0},
		{Min: 1.1, Max: 1.5, Multiplier: 1.0},
		{Min: 1.5, Max: 2, Multiplier: 1.0},
		{Min: 2, Max: 3, Multiplier: 1.0},
		{Min: 3, Max: 5, Multiplier: 1.0},
		{Min: 5, Max: 150, Multiplier: 1.0},
	}
}

type cachedTiers struct {
	intervals []tiering.Interval
	loadedAt  time.Time
}

// Calculator prices catalog records by applying the per-type markup ladder to
// converted base prices. Ladders are read through a time-bounded cache so a
// refresh touching hundreds of thousands of rows hits the database once.
type Calculator struct {
	store    TierStore
	clock    adapter.Clock
	cacheTTL time.Duration

	mu    sync.Mutex
	cache map[domain.FeedType]cachedTiers
}

// NewCalculator creates a calculator backed by the given tier store
func NewCalculator(store TierStore, clock adapter.Clock, cacheTTL time.Duration) *Calculator {
	return &Calculator{
		store:    store,
		clock:    clock,
		cacheTTL: cacheTTL,
		cache:    make(map[domain.FeedType]cachedTiers),
	}
}

// FinalPriceSEK applies the markup for the feed type and carat weight to a
// converted base price and rounds the result to the nearest 100 SEK. The
// rounding is a merchandising rule; prices are always displayed in even
// hundreds. A non-positive base price yields 0.
func (c *Calculator) FinalPriceSEK(ctx context.Context, feedType domain.FeedType, basePriceSek float64, carat *float64) float64 {
	if basePriceSek <= 0 {
		return 0
	}

	multiplier := c.Multiplier(ctx, feedType, carat)
	return math.Round(basePriceSek*multiplier/100) * 100
}

// Multiplier resolves the markup multiplier for a carat weight.
//
// Edge policy: a missing or non-positive carat uses the first band's
// multiplier as a conservative default, and a weight beyond the top band's
// ceiling uses the last band's multiplier. The ladder's top bound is nominal,
// not a rejection threshold.
func (c *Calculator) Multiplier(ctx context.Context, feedType domain.FeedType, carat *float64) float64 {
	intervals := c.tiers(ctx, feedType)

	if carat == nil || *carat <= 0 {
		return intervals[0].Multiplier
	}

	if interval, ok := tiering.Resolve(intervals, *carat); ok {
		return interval.Multiplier
	}

	if *carat > intervals[len(intervals)-1].Max {
		return intervals[len(intervals)-1].Multiplier
	}
	return intervals[0].Multiplier
}

// MarkupPercent returns the markup as a whole percentage, e.g. 80 for a 1.8
// multiplier
func (c *Calculator) MarkupPercent(ctx context.Context, feedType domain.FeedType, carat *float64) int {
	multiplier := c.Multiplier(ctx, feedType, carat)
	return int(math.Round((multiplier - 1) * 100))
}

// Invalidate drops the cached ladder for a feed type. Called after an
// administrative ladder update so the next price uses the new bands.
func (c *Calculator) Invalidate(feedType domain.FeedType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, feedType)
}

// tiers returns the ladder for a feed type, loading it through the cache and
// falling back to the launch defaults when none is configured
func (c *Calculator) tiers(ctx context.Context, feedType domain.FeedType) []tiering.Interval {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.cache[feedType]; ok && c.clock.Now().Sub(cached.loadedAt) < c.cacheTTL {
		return cached.intervals
	}

	rows, err := c.store.ListMarkupIntervals(ctx, feedType)
	if err != nil {
		logger.Warn("failed to load markup intervals, using defaults",
			zap.String("type", string(feedType)),
			zap.Error(err))
		return DefaultIntervals()
	}

	intervals := DefaultIntervals()
	if len(rows) > 0 {
		intervals = make([]tiering.Interval, len(rows))
		for i, row := range rows {
			intervals[i] = tiering.Interval{
				Min:        row.MinCarat,
				Max:        row.MaxCarat,
				Multiplier: row.Multiplier,
			}
		}
	}

	c.cache[feedType] = cachedTiers{intervals: intervals, loadedAt: c.clock.Now()}
	return intervals
}

// SeedDefaultIntervals writes the launch-default ladder for every feed type
// that has none configured yet
func SeedDefaultIntervals(ctx context.Context, store TierStore) error {
	for _, feedType := range domain.FeedTypes() {
		existing, err := store.ListMarkupIntervals(ctx, feedType)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			continue
		}

		defaults := DefaultIntervals()
		rows := make([]*schema.MarkupInterval, len(defaults))
		for i, interval := range defaults {
			rows[i] = &schema.MarkupInterval{
				Type:       feedType,
				MinCarat:   interval.Min,
				MaxCarat:   interval.Max,
				Multiplier: interval.Multiplier,
			}
		}

		if err := store.ReplaceMarkupIntervals(ctx, feedType, rows); err != nil {
			return err
		}

		logger.Info("seeded default markup intervals",
			zap.String("type", string(feedType)),
			zap.Int("bands", len(rows)))
	}

	return nil
}
