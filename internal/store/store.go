package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nordicgem/diamond-indexer/internal/domain"
	"github.com/nordicgem/diamond-indexer/internal/store/schema"
)

// DiamondQuery describes a catalog search after the API layer has resolved
// facet names into the concrete label sets stored on the rows. Empty slices
// and nil pointers mean "no constraint".
type DiamondQuery struct {
	// Type restricts the search to one feed type
	Type domain.FeedType
	// Cuts filters on the cut (shape) column, case-insensitively
	Cuts []string
	// Colors filters on the white colour grade column
	Colors []string
	// ExcludeFancy drops rows that carry any fancy colour. Set whenever the
	// search is a white-colour search.
	ExcludeFancy bool
	// AnyFancy keeps only rows that carry some fancy colour
	AnyFancy bool
	// FancyColors keeps rows whose fancy colour contains any of the given
	// names, case-insensitively. Feed values are compounds ("Fancy Vivid
	// Yellow"), so matching is substring, not equality.
	FancyColors []string
	// NotFancyColors keeps fancy rows whose colour contains NONE of the given
	// names. Used for the "other" fancy bucket. Only applied together with
	// AnyFancy.
	NotFancyColors []string
	// FancyIntensities filters on the fancy colour intensity column
	FancyIntensities []string
	// Clarities filters on the clarity grade column
	Clarities []string
	// CutGrades filters on the cut grade column
	CutGrades []string
	// Polishes filters on the polish grade column
	Polishes []string
	// Symmetries filters on the symmetry grade column
	Symmetries []string
	// Fluorescences filters on the fluorescence intensity column
	Fluorescences []string
	// GradingLabs filters on the grading lab column
	GradingLabs []string
	// MinCarat / MaxCarat bound the carat weight (inclusive)
	MinCarat *float64
	MaxCarat *float64
	// MinPrice / MaxPrice bound the final SEK price (inclusive)
	MinPrice *float64
	MaxPrice *float64
	// MinPriceUSD / MaxPriceUSD bound the supplier USD price (inclusive).
	// Used when no SEK bound is given.
	MinPriceUSD *float64
	MaxPriceUSD *float64
	// MinTable / MaxTable bound the table percentage (inclusive)
	MinTable *float64
	MaxTable *float64
	// Limit / Offset control pagination. Limit <= 0 means no limit.
	Limit  int
	Offset int
}

// ImportJobUpdate carries the mutable import job fields. Nil fields are left
// untouched.
type ImportJobUpdate struct {
	Status           *domain.ImportStatus
	TotalRecords     *int
	ProcessedRecords *int
	ErrorMessage     *string
	StartedAt        *time.Time
	CompletedAt      *time.Time
}

// Store defines the interface for database operations
type Store interface {
	// SearchDiamonds retrieves diamonds matching the query, ordered by final
	// SEK price ascending with unpriced rows last, plus the total match count
	SearchDiamonds(ctx context.Context, query DiamondQuery) ([]*schema.Diamond, uint64, error)
	// GetDiamondByItemID retrieves one diamond by its supplier item ID.
	// Returns nil when the item is unknown.
	GetDiamondByItemID(ctx context.Context, itemID string) (*schema.Diamond, error)
	// CountDiamondsByType returns the number of catalog rows for a feed type
	CountDiamondsByType(ctx context.Context, feedType domain.FeedType) (int64, error)
	// DeleteDiamondsByType removes every catalog row for a feed type and
	// returns the number of rows removed
	DeleteDiamondsByType(ctx context.Context, feedType domain.FeedType) (int64, error)
	// UpsertDiamondBatch inserts the given rows, updating the price and
	// bookkeeping columns on item_id conflicts
	UpsertDiamondBatch(ctx context.Context, diamonds []*schema.Diamond) error

	// CreateImportJob persists a new import job
	CreateImportJob(ctx context.Context, job *schema.ImportJob) error
	// UpdateImportJob applies the non-nil fields of the update to a job
	UpdateImportJob(ctx context.Context, id uuid.UUID, update ImportJobUpdate) error
	// GetImportJob retrieves a job by ID. Returns domain.ErrJobNotFound when
	// the job does not exist.
	GetImportJob(ctx context.Context, id uuid.UUID) (*schema.ImportJob, error)
	// ListImportJobs retrieves the most recent jobs, newest first
	ListImportJobs(ctx context.Context, limit int) ([]*schema.ImportJob, error)

	// GetCurrentExchangeRate retrieves the open rate for a currency pair.
	// Returns nil when no rate has ever been saved.
	GetCurrentExchangeRate(ctx context.Context, from, to string) (*schema.ExchangeRate, error)
	// SaveExchangeRate closes the open rate for the pair and inserts the new
	// one in a single transaction
	SaveExchangeRate(ctx context.Context, from, to string, rate float64, now time.Time) (*schema.ExchangeRate, error)

	// ListMarkupIntervals retrieves the markup ladder for a feed type ordered
	// by ascending lower bound
	ListMarkupIntervals(ctx context.Context, feedType domain.FeedType) ([]*schema.MarkupInterval, error)
	// ReplaceMarkupIntervals atomically swaps the markup ladder for a feed type
	ReplaceMarkupIntervals(ctx context.Context, feedType domain.FeedType, intervals []*schema.MarkupInterval) error
}
