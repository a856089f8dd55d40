package currency

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nordicgem/diamond-indexer/internal/adapter"
	"github.com/nordicgem/diamond-indexer/internal/domain"
	"github.com/nordicgem/diamond-indexer/internal/logger"
	"github.com/nordicgem/diamond-indexer/internal/store/schema"
)

// RateStore is the slice of the persistence layer the converter needs
type RateStore interface {
	// GetCurrentExchangeRate retrieves the open rate for a currency pair.
	// Returns nil when no rate has ever been saved.
	GetCurrentExchangeRate(ctx context.Context, from, to string) (*schema.ExchangeRate, error)
	// SaveExchangeRate closes the open rate for the pair and inserts the new
	// one in a single transaction
	SaveExchangeRate(ctx context.Context, from, to string, rate float64, now time.Time) (*schema.ExchangeRate, error)
}

// Converter converts amounts between a fixed currency pair, keeping the rate
// fresh against an external provider and persisting every rate change.
//
// A rate is considered fresh for cacheTTL after it was saved. A stale rate is
// refreshed from the provider on first use; when the provider is unreachable
// the stale rate is used rather than failing the conversion. Conversions only
// fail when no rate has ever been stored.
type Converter struct {
	store    RateStore
	provider RateProvider
	clock    adapter.Clock
	from     string
	to       string
	cacheTTL time.Duration

	mu     sync.Mutex
	cached *schema.ExchangeRate
}

// NewConverter creates a converter for the given currency pair
func NewConverter(store RateStore, provider RateProvider, clock adapter.Clock, from, to string, cacheTTL time.Duration) *Converter {
	return &Converter{
		store:    store,
		provider: provider,
		clock:    clock,
		from:     from,
		to:       to,
		cacheTTL: cacheTTL,
	}
}

// Convert converts an amount in the source currency to the target currency.
// Returns domain.ErrRateUnavailable when no rate can be obtained.
func (c *Converter) Convert(ctx context.Context, amount float64) (float64, error) {
	rate, err := c.CurrentRate(ctx)
	if err != nil {
		return 0, err
	}
	return amount * rate, nil
}

// CurrentRate returns the rate in effect for the pair, refreshing it from the
// provider when the stored one has gone stale
func (c *Converter) CurrentRate(ctx context.Context) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && c.fresh(c.cached) {
		return c.cached.Rate, nil
	}

	stored, err := c.store.GetCurrentExchangeRate(ctx, c.from, c.to)
	if err != nil {
		return 0, err
	}
	if stored != nil && c.fresh(stored) {
		c.cached = stored
		return stored.Rate, nil
	}

	refreshed, err := c.refreshLocked(ctx)
	if err == nil {
		return refreshed.Rate, nil
	}

	// Provider unreachable. A stale rate beats no rate.
	if stored != nil {
		logger.Warn("using stale exchange rate",
			zap.String("pair", c.from+"/"+c.to),
			zap.Float64("rate", stored.Rate),
			zap.Time("valid_from", stored.ValidFrom),
			zap.Error(err))
		c.cached = stored
		return stored.Rate, nil
	}

	logger.Error(err, zap.String("pair", c.from+"/"+c.to))
	return 0, domain.ErrRateUnavailable
}

// RefreshRate forces a fetch from the provider and persists the result
func (c *Converter) RefreshRate(ctx context.Context) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	saved, err := c.refreshLocked(ctx)
	if err != nil {
		return 0, err
	}
	return saved.Rate, nil
}

func (c *Converter) refreshLocked(ctx context.Context) (*schema.ExchangeRate, error) {
	rate, err := c.provider.FetchRate(ctx, c.from, c.to)
	if err != nil {
		return nil, err
	}

	saved, err := c.store.SaveExchangeRate(ctx, c.from, c.to, rate, c.clock.Now().UTC())
	if err != nil {
		return nil, err
	}

	logger.Info("exchange rate refreshed",
		zap.String("pair", c.from+"/"+c.to),
		zap.Float64("rate", rate))

	c.cached = saved
	return saved, nil
}

func (c *Converter) fresh(rate *schema.ExchangeRate) bool {
	return c.clock.Now().Sub(rate.ValidFrom) < c.cacheTTL
}
