package currency_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordicgem/diamond-indexer/internal/currency"
	"github.com/nordicgem/diamond-indexer/internal/domain"
	"github.com/nordicgem/diamond-indexer/internal/logger"
	"github.com/nordicgem/diamond-indexer/internal/store/schema"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

// fakeClock is a controllable clock for tests
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time                  { return c.now }
func (c *fakeClock) Since(t time.Time) time.Duration { return c.now.Sub(t) }
func (c *fakeClock) Sleep(d time.Duration)           { c.now = c.now.Add(d) }

// fakeRateStore keeps the current rate in memory
type fakeRateStore struct {
	current   *schema.ExchangeRate
	saveCalls int
	getErr    error
	saveErr   error
}

func (s *fakeRateStore) GetCurrentExchangeRate(_ context.Context, _, _ string) (*schema.ExchangeRate, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.current, nil
}

func (s *fakeRateStore) SaveExchangeRate(_ context.Context, from, to string, rate float64, now time.Time) (*schema.ExchangeRate, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	s.saveCalls++
	if s.current != nil {
		s.current.ValidUntil = &now
	}
	s.current = &schema.ExchangeRate{
		FromCurrency: from,
		ToCurrency:   to,
		Rate:         rate,
		ValidFrom:    now,
	}
	return s.current, nil
}

// fakeProvider returns a fixed rate or error
type fakeProvider struct {
	rate       float64
	err        error
	fetchCalls int
}

func (p *fakeProvider) FetchRate(_ context.Context, _, _ string) (float64, error) {
	p.fetchCalls++
	if p.err != nil {
		return 0, p.err
	}
	return p.rate, nil
}

func newTestConverter(store *fakeRateStore, provider *fakeProvider, clock *fakeClock) *currency.Converter {
	return currency.NewConverter(store, provider, clock, "USD", "SEK", 2*time.Hour)
}

func TestConverter_Convert_FetchesWhenEmpty(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store := &fakeRateStore{}
	provider := &fakeProvider{rate: 10.5}
	conv := newTestConverter(store, provider, clock)

	got, err := conv.Convert(context.Background(), 100)
	require.NoError(t, err)
	assert.InDelta(t, 1050, got, 1e-9)
	assert.Equal(t, 1, provider.fetchCalls)
	assert.Equal(t, 1, store.saveCalls)
}

func TestConverter_Convert_UsesCachedRate(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store := &fakeRateStore{}
	provider := &fakeProvider{rate: 10.5}
	conv := newTestConverter(store, provider, clock)

	_, err := conv.Convert(context.Background(), 100)
	require.NoError(t, err)

	// Within the TTL nothing hits the provider again
	clock.now = clock.now.Add(time.Hour)
	_, err = conv.Convert(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.fetchCalls)
}

func TestConverter_Convert_RefreshesStaleRate(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store := &fakeRateStore{
		current: &schema.ExchangeRate{
			FromCurrency: "USD",
			ToCurrency:   "SEK",
			Rate:         9.0,
			ValidFrom:    clock.now.Add(-3 * time.Hour),
		},
	}
	provider := &fakeProvider{rate: 10.0}
	conv := newTestConverter(store, provider, clock)

	got, err := conv.Convert(context.Background(), 10)
	require.NoError(t, err)
	assert.InDelta(t, 100, got, 1e-9)
	assert.Equal(t, 1, provider.fetchCalls)
}

func TestConverter_Convert_FallsBackToStaleRate(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store := &fakeRateStore{
		current: &schema.ExchangeRate{
			FromCurrency: "USD",
			ToCurrency:   "SEK",
			Rate:         9.0,
			ValidFrom:    clock.now.Add(-24 * time.Hour),
		},
	}
	provider := &fakeProvider{err: errors.New("provider down")}
	conv := newTestConverter(store, provider, clock)

	got, err := conv.Convert(context.Background(), 10)
	require.NoError(t, err)
	assert.InDelta(t, 90, got, 1e-9)
}

func TestConverter_Convert_RateUnavailable(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store := &fakeRateStore{}
	provider := &fakeProvider{err: errors.New("provider down")}
	conv := newTestConverter(store, provider, clock)

	_, err := conv.Convert(context.Background(), 10)
	assert.ErrorIs(t, err, domain.ErrRateUnavailable)
}

func TestConverter_RefreshRate_AlwaysFetches(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store := &fakeRateStore{}
	provider := &fakeProvider{rate: 10.5}
	conv := newTestConverter(store, provider, clock)

	rate, err := conv.RefreshRate(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 10.5, rate, 1e-9)

	provider.rate = 11.0
	rate, err = conv.RefreshRate(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 11.0, rate, 1e-9)
	assert.Equal(t, 2, provider.fetchCalls)
	assert.Equal(t, 2, store.saveCalls)

	// The refreshed rate is the one conversions use
	got, err := conv.Convert(context.Background(), 2)
	require.NoError(t, err)
	assert.InDelta(t, 22, got, 1e-9)
}
