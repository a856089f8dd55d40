package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nordicgem/diamond-indexer/internal/domain"
	"github.com/nordicgem/diamond-indexer/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. It accesses the underlying *sql.DB and sets the pool
// configuration. Zero values fall back to defaults:
//   - MaxOpenConns: 20 (if 0)
//   - MaxIdleConns: 5 (if 0)
//   - ConnMaxLifetime: 5 minutes (if 0)
//   - ConnMaxIdleTime: 10 minutes (if 0)
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Notes:
//   - database/sql treats MaxOpenConns=0 as "unlimited"
//   - database/sql treats MaxIdleConns=0 as "no idle connections"
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// Ensure MaxIdleConns doesn't exceed MaxOpenConns
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// calculateSafeBatchSize computes the batch size for bulk inserts that stays
// under PostgreSQL's extended protocol limit of 65535 parameters per query.
// Each diamond row carries roughly 68 parameters, so oversized batches would
// otherwise fail. A headroom is reserved for the ON CONFLICT clause and GORM
// bookkeeping.
func calculateSafeBatchSize(totalRecords int, fieldsPerRecord int) int {
	const maxParams = 65535
	const totalHeadroom = 1000

	availableParams := maxParams - totalHeadroom
	safeBatchSize := max(availableParams/fieldsPerRecord, 1)

	if safeBatchSize > totalRecords {
		return totalRecords
	}

	return safeBatchSize
}

// diamondFieldCount approximates the number of bound parameters per diamond row
const diamondFieldCount = 68

// diamondUpdateColumns are the columns refreshed when an incoming row collides
// with an existing item_id. Descriptive attributes are left as-is; only
// pricing and bookkeeping move.
var diamondUpdateColumns = []string{
	"price_per_carat",
	"total_price",
	"total_price_sek",
	"final_price_sek",
	"percent_off_idex_list",
	"import_job_id",
	"updated_at",
}

// fancyColorConditions builds an OR of case-insensitive substring matches on
// the fancy colour column, one per requested name
func fancyColorConditions(names []string) (string, []interface{}) {
	conds := make([]string, 0, len(names))
	args := make([]interface{}, 0, len(names))
	for _, name := range names {
		conds = append(conds, "natural_fancy_color ILIKE ?")
		args = append(args, "%"+name+"%")
	}
	return strings.Join(conds, " OR "), args
}

// SearchDiamonds retrieves diamonds matching the query ordered by final SEK
// price ascending, with unpriced rows last
func (s *pgStore) SearchDiamonds(ctx context.Context, query DiamondQuery) ([]*schema.Diamond, uint64, error) {
	q := s.db.WithContext(ctx).Model(&schema.Diamond{})

	if query.Type != "" {
		q = q.Where("type = ?", query.Type)
	}
	if len(query.Cuts) > 0 {
		cuts := make([]string, len(query.Cuts))
		for i, c := range query.Cuts {
			cuts[i] = strings.ToLower(c)
		}
		q = q.Where("LOWER(cut) IN ?", cuts)
	}
	if len(query.Colors) > 0 {
		q = q.Where("color IN ?", query.Colors)
	}
	if query.ExcludeFancy {
		q = q.Where("(natural_fancy_color IS NULL OR natural_fancy_color = '')")
	}
	if query.AnyFancy {
		q = q.Where("natural_fancy_color IS NOT NULL AND TRIM(natural_fancy_color) <> ''")
		if len(query.NotFancyColors) > 0 {
			cond, args := fancyColorConditions(query.NotFancyColors)
			q = q.Where("NOT ("+cond+")", args...)
		}
	}
	if len(query.FancyColors) > 0 {
		cond, args := fancyColorConditions(query.FancyColors)
		q = q.Where("natural_fancy_color IS NOT NULL AND TRIM(natural_fancy_color) <> '' AND ("+cond+")", args...)
	}
	if len(query.FancyIntensities) > 0 {
		q = q.Where("natural_fancy_color_intensity IN ?", query.FancyIntensities)
	}
	if len(query.Clarities) > 0 {
		q = q.Where("clarity IN ?", query.Clarities)
	}
	if len(query.CutGrades) > 0 {
		q = q.Where("cut_grade IN ?", query.CutGrades)
	}
	if len(query.Polishes) > 0 {
		q = q.Where("polish IN ?", query.Polishes)
	}
	if len(query.Symmetries) > 0 {
		q = q.Where("symmetry IN ?", query.Symmetries)
	}
	if len(query.Fluorescences) > 0 {
		q = q.Where("fluorescence_intensity IN ?", query.Fluorescences)
	}
	if len(query.GradingLabs) > 0 {
		q = q.Where("grading_lab IN ?", query.GradingLabs)
	}
	if query.MinCarat != nil {
		q = q.Where("carat >= ?", *query.MinCarat)
	}
	if query.MaxCarat != nil {
		q = q.Where("carat <= ?", *query.MaxCarat)
	}
	if query.MinPrice != nil {
		q = q.Where("final_price_sek >= ?", *query.MinPrice)
	}
	if query.MaxPrice != nil {
		q = q.Where("final_price_sek <= ?", *query.MaxPrice)
	}
	if query.MinPriceUSD != nil {
		q = q.Where("total_price >= ?", *query.MinPriceUSD)
	}
	if query.MaxPriceUSD != nil {
		q = q.Where("total_price <= ?", *query.MaxPriceUSD)
	}
	if query.MinTable != nil {
		q = q.Where("table_percent >= ?", *query.MinTable)
	}
	if query.MaxTable != nil {
		q = q.Where("table_percent <= ?", *query.MaxTable)
	}

	// Count total before pagination
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count diamonds: %w", err)
	}

	q = q.Order("final_price_sek ASC NULLS LAST").Order("id ASC")
	if query.Limit > 0 {
		q = q.Limit(query.Limit)
	}
	if query.Offset > 0 {
		q = q.Offset(query.Offset)
	}

	var diamonds []*schema.Diamond
	if err := q.Find(&diamonds).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get diamonds: %w", err)
	}

	return diamonds, uint64(total), nil //nolint:gosec,G115
}

// GetDiamondByItemID retrieves one diamond by its supplier item ID
func (s *pgStore) GetDiamondByItemID(ctx context.Context, itemID string) (*schema.Diamond, error) {
	var diamond schema.Diamond
	err := s.db.WithContext(ctx).Where("item_id = ?", itemID).First(&diamond).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get diamond: %w", err)
	}
	return &diamond, nil
}

// CountDiamondsByType returns the number of catalog rows for a feed type
func (s *pgStore) CountDiamondsByType(ctx context.Context, feedType domain.FeedType) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&schema.Diamond{}).
		Where("type = ?", feedType).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count diamonds: %w", err)
	}
	return count, nil
}

// DeleteDiamondsByType removes every catalog row for a feed type
func (s *pgStore) DeleteDiamondsByType(ctx context.Context, feedType domain.FeedType) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("type = ?", feedType).
		Delete(&schema.Diamond{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete diamonds: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// UpsertDiamondBatch inserts the given rows, updating only the pricing and
// bookkeeping columns on item_id conflicts
func (s *pgStore) UpsertDiamondBatch(ctx context.Context, diamonds []*schema.Diamond) error {
	if len(diamonds) == 0 {
		return nil
	}

	batchSize := calculateSafeBatchSize(len(diamonds), diamondFieldCount)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_id"}},
		DoUpdates: clause.AssignmentColumns(diamondUpdateColumns),
	}).CreateInBatches(diamonds, batchSize).Error
	if err != nil {
		return fmt.Errorf("failed to upsert diamonds: %w", err)
	}
	return nil
}

// CreateImportJob persists a new import job
func (s *pgStore) CreateImportJob(ctx context.Context, job *schema.ImportJob) error {
	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create import job: %w", err)
	}
	return nil
}

// UpdateImportJob applies the non-nil fields of the update to a job
func (s *pgStore) UpdateImportJob(ctx context.Context, id uuid.UUID, update ImportJobUpdate) error {
	updates := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}
	if update.Status != nil {
		updates["status"] = *update.Status
	}
	if update.TotalRecords != nil {
		updates["total_records"] = *update.TotalRecords
	}
	if update.ProcessedRecords != nil {
		updates["processed_records"] = *update.ProcessedRecords
	}
	if update.ErrorMessage != nil {
		updates["error_message"] = *update.ErrorMessage
	}
	if update.StartedAt != nil {
		updates["started_at"] = *update.StartedAt
	}
	if update.CompletedAt != nil {
		updates["completed_at"] = *update.CompletedAt
	}

	result := s.db.WithContext(ctx).Model(&schema.ImportJob{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update import job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

// GetImportJob retrieves a job by ID
func (s *pgStore) GetImportJob(ctx context.Context, id uuid.UUID) (*schema.ImportJob, error) {
	var job schema.ImportJob
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get import job: %w", err)
	}
	return &job, nil
}

// ListImportJobs retrieves the most recent jobs, newest first
func (s *pgStore) ListImportJobs(ctx context.Context, limit int) ([]*schema.ImportJob, error) {
	if limit <= 0 {
		limit = 50
	}
	var jobs []*schema.ImportJob
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list import jobs: %w", err)
	}
	return jobs, nil
}

// GetCurrentExchangeRate retrieves the open rate for a currency pair
func (s *pgStore) GetCurrentExchangeRate(ctx context.Context, from, to string) (*schema.ExchangeRate, error) {
	var rate schema.ExchangeRate
	err := s.db.WithContext(ctx).
		Where("from_currency = ? AND to_currency = ? AND valid_until IS NULL", from, to).
		Order("valid_from DESC").
		First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get exchange rate: %w", err)
	}
	return &rate, nil
}

// SaveExchangeRate closes the open rate for the pair and inserts the new one.
// Both steps happen in one transaction so there is never a moment with two
// open rates or none at all.
func (s *pgStore) SaveExchangeRate(ctx context.Context, from, to string, rate float64, now time.Time) (*schema.ExchangeRate, error) {
	saved := &schema.ExchangeRate{
		FromCurrency: from,
		ToCurrency:   to,
		Rate:         rate,
		ValidFrom:    now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&schema.ExchangeRate{}).
			Where("from_currency = ? AND to_currency = ? AND valid_until IS NULL", from, to).
			Update("valid_until", now).Error; err != nil {
			return fmt.Errorf("failed to close current rate: %w", err)
		}

		if err := tx.Create(saved).Error; err != nil {
			return fmt.Errorf("failed to insert rate: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return saved, nil
}

// ListMarkupIntervals retrieves the markup ladder for a feed type ordered by
// ascending lower bound
func (s *pgStore) ListMarkupIntervals(ctx context.Context, feedType domain.FeedType) ([]*schema.MarkupInterval, error) {
	var intervals []*schema.MarkupInterval
	err := s.db.WithContext(ctx).
		Where("type = ?", feedType).
		Order("min_carat ASC").
		Find(&intervals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list markup intervals: %w", err)
	}
	return intervals, nil
}

// ReplaceMarkupIntervals atomically swaps the markup ladder for a feed type
func (s *pgStore) ReplaceMarkupIntervals(ctx context.Context, feedType domain.FeedType, intervals []*schema.MarkupInterval) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("type = ?", feedType).
			Delete(&schema.MarkupInterval{}).Error; err != nil {
			return fmt.Errorf("failed to clear markup intervals: %w", err)
		}

		if len(intervals) == 0 {
			return nil
		}

		for _, interval := range intervals {
			interval.Type = feedType
		}

		if err := tx.Create(intervals).Error; err != nil {
			return fmt.Errorf("failed to insert markup intervals: %w", err)
		}

		return nil
	})
}
