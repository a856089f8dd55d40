package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordicgem/diamond-indexer/internal/domain"
	"github.com/nordicgem/diamond-indexer/internal/store/schema"
)

// =============================================================================
// Test Data Builders
// =============================================================================

func strPtr(s string) *string       { return &s }
func floatPtr(f float64) *float64   { return &f }
func intPtr(i int) *int             { return &i }
func timePtr(t time.Time) *time.Time { return &t }

// buildTestDiamond creates a minimal catalog row for tests
func buildTestDiamond(itemID string, feedType domain.FeedType, carat float64, finalPrice float64) *schema.Diamond {
	return &schema.Diamond{
		ItemID:        itemID,
		Type:          feedType,
		Carat:         floatPtr(carat),
		Color:         strPtr("G"),
		Clarity:       strPtr("VS1"),
		Cut:           strPtr("Round"),
		TotalPrice:    floatPtr(1000),
		FinalPriceSek: floatPtr(finalPrice),
	}
}

// =============================================================================
// Store Tests
// =============================================================================

// RunStoreTests runs the shared store test suite against an implementation
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store, cleanupDB func(t *testing.T)) {
	tests := map[string]func(*testing.T, Store){
		"UpsertAndGetDiamond":      testUpsertAndGetDiamond,
		"UpsertUpdatesOnlyPricing": testUpsertUpdatesOnlyPricing,
		"DeleteDiamondsByType":     testDeleteDiamondsByType,
		"SearchDiamonds":           testSearchDiamonds,
		"SearchDiamondsFancy":      testSearchDiamondsFancy,
		"ImportJobLifecycle":       testImportJobLifecycle,
		"ImportJobNotFound":        testImportJobNotFound,
		"ExchangeRateRotation":     testExchangeRateRotation,
		"MarkupIntervalReplace":    testMarkupIntervalReplace,
	}

	for name, fn := range tests {
		t.Run(name, func(t *testing.T) {
			s := initDB(t)
			defer cleanupDB(t)
			fn(t, s)
		})
	}
}

func testUpsertAndGetDiamond(t *testing.T, s Store) {
	ctx := context.Background()

	diamonds := []*schema.Diamond{
		buildTestDiamond("ITEM-1", domain.FeedTypeNatural, 0.5, 12000),
		buildTestDiamond("ITEM-2", domain.FeedTypeLab, 1.2, 8000),
	}
	require.NoError(t, s.UpsertDiamondBatch(ctx, diamonds))

	got, err := s.GetDiamondByItemID(ctx, "ITEM-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ITEM-1", got.ItemID)
	assert.Equal(t, domain.FeedTypeNatural, got.Type)
	require.NotNil(t, got.Carat)
	assert.InDelta(t, 0.5, *got.Carat, 1e-9)

	missing, err := s.GetDiamondByItemID(ctx, "NOPE")
	require.NoError(t, err)
	assert.Nil(t, missing)

	count, err := s.CountDiamondsByType(ctx, domain.FeedTypeNatural)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func testUpsertUpdatesOnlyPricing(t *testing.T, s Store) {
	ctx := context.Background()

	original := buildTestDiamond("ITEM-9", domain.FeedTypeNatural, 0.7, 15000)
	require.NoError(t, s.UpsertDiamondBatch(ctx, []*schema.Diamond{original}))

	jobID := uuid.New()
	updated := buildTestDiamond("ITEM-9", domain.FeedTypeNatural, 0.7, 16100)
	updated.Color = strPtr("D") // descriptive change must not propagate
	updated.TotalPrice = floatPtr(1100)
	updated.ImportJobID = &jobID
	require.NoError(t, s.UpsertDiamondBatch(ctx, []*schema.Diamond{updated}))

	got, err := s.GetDiamondByItemID(ctx, "ITEM-9")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.FinalPriceSek)
	assert.InDelta(t, 16100, *got.FinalPriceSek, 1e-9)
	require.NotNil(t, got.TotalPrice)
	assert.InDelta(t, 1100, *got.TotalPrice, 1e-9)
	require.NotNil(t, got.ImportJobID)
	assert.Equal(t, jobID, *got.ImportJobID)
	require.NotNil(t, got.Color)
	assert.Equal(t, "G", *got.Color)

	count, err := s.CountDiamondsByType(ctx, domain.FeedTypeNatural)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func testDeleteDiamondsByType(t *testing.T, s Store) {
	ctx := context.Background()

	diamonds := []*schema.Diamond{
		buildTestDiamond("N-1", domain.FeedTypeNatural, 0.5, 10000),
		buildTestDiamond("N-2", domain.FeedTypeNatural, 0.6, 11000),
		buildTestDiamond("L-1", domain.FeedTypeLab, 1.0, 6000),
	}
	require.NoError(t, s.UpsertDiamondBatch(ctx, diamonds))

	deleted, err := s.DeleteDiamondsByType(ctx, domain.FeedTypeNatural)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	count, err := s.CountDiamondsByType(ctx, domain.FeedTypeNatural)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// Other feed untouched
	count, err = s.CountDiamondsByType(ctx, domain.FeedTypeLab)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func testSearchDiamonds(t *testing.T, s Store) {
	ctx := context.Background()

	cheap := buildTestDiamond("S-1", domain.FeedTypeNatural, 0.5, 9000)
	mid := buildTestDiamond("S-2", domain.FeedTypeNatural, 1.0, 20000)
	mid.Clarity = strPtr("SI1")
	expensive := buildTestDiamond("S-3", domain.FeedTypeNatural, 2.0, 90000)
	unpriced := buildTestDiamond("S-4", domain.FeedTypeNatural, 0.4, 0)
	unpriced.FinalPriceSek = nil
	lab := buildTestDiamond("S-5", domain.FeedTypeLab, 1.0, 5000)
	require.NoError(t, s.UpsertDiamondBatch(ctx, []*schema.Diamond{cheap, mid, expensive, unpriced, lab}))

	// Type filter plus price ordering, unpriced last
	results, total, err := s.SearchDiamonds(ctx, DiamondQuery{Type: domain.FeedTypeNatural})
	require.NoError(t, err)
	assert.Equal(t, uint64(4), total)
	require.Len(t, results, 4)
	assert.Equal(t, "S-1", results[0].ItemID)
	assert.Equal(t, "S-2", results[1].ItemID)
	assert.Equal(t, "S-3", results[2].ItemID)
	assert.Equal(t, "S-4", results[3].ItemID)

	// Clarity facet
	results, total, err = s.SearchDiamonds(ctx, DiamondQuery{
		Type:      domain.FeedTypeNatural,
		Clarities: []string{"SI1"},
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)
	require.Len(t, results, 1)
	assert.Equal(t, "S-2", results[0].ItemID)

	// Carat range
	results, _, err = s.SearchDiamonds(ctx, DiamondQuery{
		Type:     domain.FeedTypeNatural,
		MinCarat: floatPtr(0.9),
		MaxCarat: floatPtr(2.0),
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Pagination keeps the total
	results, total, err = s.SearchDiamonds(ctx, DiamondQuery{
		Type:   domain.FeedTypeNatural,
		Limit:  2,
		Offset: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(4), total)
	require.Len(t, results, 2)
	assert.Equal(t, "S-2", results[0].ItemID)
}

func testSearchDiamondsFancy(t *testing.T, s Store) {
	ctx := context.Background()

	white := buildTestDiamond("F-1", domain.FeedTypeNatural, 0.5, 10000)
	yellow := buildTestDiamond("F-2", domain.FeedTypeNatural, 0.5, 20000)
	yellow.NaturalFancyColor = strPtr("Fancy Vivid Yellow")
	yellow.NaturalFancyColorIntensity = strPtr("Vivid")
	green := buildTestDiamond("F-3", domain.FeedTypeNatural, 0.5, 30000)
	green.NaturalFancyColor = strPtr("Green")
	require.NoError(t, s.UpsertDiamondBatch(ctx, []*schema.Diamond{white, yellow, green}))

	// White-colour search excludes fancy rows
	results, _, err := s.SearchDiamonds(ctx, DiamondQuery{
		Type:         domain.FeedTypeNatural,
		Colors:       []string{"G"},
		ExcludeFancy: true,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "F-1", results[0].ItemID)

	// Named fancy colour
	results, _, err = s.SearchDiamonds(ctx, DiamondQuery{
		Type:        domain.FeedTypeNatural,
		FancyColors: []string{"Yellow"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "F-2", results[0].ItemID)

	// Any fancy, excluding named ones, leaves the "other" bucket
	results, _, err = s.SearchDiamonds(ctx, DiamondQuery{
		Type:           domain.FeedTypeNatural,
		AnyFancy:       true,
		NotFancyColors: []string{"Yellow"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "F-3", results[0].ItemID)

	// Intensity facet
	results, _, err = s.SearchDiamonds(ctx, DiamondQuery{
		Type:             domain.FeedTypeNatural,
		AnyFancy:         true,
		FancyIntensities: []string{"Vivid"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "F-2", results[0].ItemID)
}

func testImportJobLifecycle(t *testing.T, s Store) {
	ctx := context.Background()

	job := &schema.ImportJob{
		ID:     uuid.New(),
		Type:   domain.FeedTypeNatural,
		Status: domain.ImportStatusPending,
	}
	require.NoError(t, s.CreateImportJob(ctx, job))

	started := time.Now().UTC().Truncate(time.Second)
	inProgress := domain.ImportStatusInProgress
	require.NoError(t, s.UpdateImportJob(ctx, job.ID, ImportJobUpdate{
		Status:    &inProgress,
		StartedAt: timePtr(started),
	}))

	completed := domain.ImportStatusCompleted
	require.NoError(t, s.UpdateImportJob(ctx, job.ID, ImportJobUpdate{
		Status:           &completed,
		TotalRecords:     intPtr(1200),
		ProcessedRecords: intPtr(1200),
		CompletedAt:      timePtr(time.Now().UTC()),
	}))

	got, err := s.GetImportJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ImportStatusCompleted, got.Status)
	require.NotNil(t, got.TotalRecords)
	assert.Equal(t, 1200, *got.TotalRecords)
	assert.Equal(t, 1200, got.ProcessedRecords)
	require.NotNil(t, got.StartedAt)
	require.NotNil(t, got.CompletedAt)

	jobs, err := s.ListImportJobs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, job.ID, jobs[0].ID)
}

func testImportJobNotFound(t *testing.T, s Store) {
	ctx := context.Background()

	_, err := s.GetImportJob(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrJobNotFound)

	failed := domain.ImportStatusFailed
	err = s.UpdateImportJob(ctx, uuid.New(), ImportJobUpdate{Status: &failed})
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func testExchangeRateRotation(t *testing.T, s Store) {
	ctx := context.Background()

	current, err := s.GetCurrentExchangeRate(ctx, "USD", "SEK")
	require.NoError(t, err)
	assert.Nil(t, current)

	first := time.Now().UTC().Add(-time.Hour)
	_, err = s.SaveExchangeRate(ctx, "USD", "SEK", 10.25, first)
	require.NoError(t, err)

	current, err = s.GetCurrentExchangeRate(ctx, "USD", "SEK")
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.InDelta(t, 10.25, current.Rate, 1e-9)
	assert.Nil(t, current.ValidUntil)

	second := time.Now().UTC()
	_, err = s.SaveExchangeRate(ctx, "USD", "SEK", 10.50, second)
	require.NoError(t, err)

	// Only the new rate is open
	current, err = s.GetCurrentExchangeRate(ctx, "USD", "SEK")
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.InDelta(t, 10.50, current.Rate, 1e-9)

	// Other pairs are untouched
	other, err := s.GetCurrentExchangeRate(ctx, "USD", "EUR")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func testMarkupIntervalReplace(t *testing.T, s Store) {
	ctx := context.Background()

	intervals := []*schema.MarkupInterval{
		{MinCarat: 0.5, MaxCarat: 1.0, Multiplier: 2.2},
		{MinCarat: 0, MaxCarat: 0.5, Multiplier: 2.7},
	}
	require.NoError(t, s.ReplaceMarkupIntervals(ctx, domain.FeedTypeNatural, intervals))

	got, err := s.ListMarkupIntervals(ctx, domain.FeedTypeNatural)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Ordered by ascending lower bound
	assert.InDelta(t, 0.0, got[0].MinCarat, 1e-9)
	assert.InDelta(t, 2.7, got[0].Multiplier, 1e-9)
	assert.InDelta(t, 0.5, got[1].MinCarat, 1e-9)

	// Replacing swaps the whole ladder
	require.NoError(t, s.ReplaceMarkupIntervals(ctx, domain.FeedTypeNatural, []*schema.MarkupInterval{
		{MinCarat: 0, MaxCarat: 150, Multiplier: 1.8},
	}))
	got, err = s.ListMarkupIntervals(ctx, domain.FeedTypeNatural)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 1.8, got[0].Multiplier, 1e-9)

	// Other feed type has its own ladder
	got, err = s.ListMarkupIntervals(ctx, domain.FeedTypeLab)
	require.NoError(t, err)
	assert.Empty(t, got)
}
