package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nordicgem/diamond-indexer/internal/adapter"
	"github.com/nordicgem/diamond-indexer/internal/domain"
	"github.com/nordicgem/diamond-indexer/internal/feed"
	"github.com/nordicgem/diamond-indexer/internal/logger"
	"github.com/nordicgem/diamond-indexer/internal/store"
	"github.com/nordicgem/diamond-indexer/internal/store/schema"
)

// Fetcher downloads the raw CSV stream for a feed type
type Fetcher interface {
	Fetch(ctx context.Context, feedType domain.FeedType) (io.ReadCloser, error)
}

// RateSource provides the exchange rate applied during a refresh
type RateSource interface {
	// CurrentRate returns the source-to-target multiplier. Returns
	// domain.ErrRateUnavailable when no rate can be obtained.
	CurrentRate(ctx context.Context) (float64, error)
}

// Pricer derives the final marked-up price from a converted base price
type Pricer interface {
	FinalPriceSEK(ctx context.Context, feedType domain.FeedType, basePriceSek float64, carat *float64) float64
}

// JobStore is the slice of the persistence layer the refresh lifecycle needs
type JobStore interface {
	DeleteDiamondsByType(ctx context.Context, feedType domain.FeedType) (int64, error)
	CreateImportJob(ctx context.Context, job *schema.ImportJob) error
	UpdateImportJob(ctx context.Context, id uuid.UUID, update store.ImportJobUpdate) error
}

// Service runs catalog refreshes: it guards against concurrent refreshes of
// the same feed, wipes and reloads the catalog for a type, converts and
// prices every record, and records the whole attempt as an import job.
type Service struct {
	store     JobStore
	fetcher   Fetcher
	parser    *feed.Parser
	rates     RateSource
	pricer    Pricer
	writer    *Writer
	guard     *Guard
	clock     adapter.Clock
	pool      pond.Pool
	typePause time.Duration
}

// Options tunes a refresh service
type Options struct {
	// PoolSize caps concurrent background refreshes. Two is enough: one per
	// feed type.
	PoolSize int
	// TypePause is the delay between feed types in RefreshAll, giving the
	// runtime room to release the first feed's memory
	TypePause time.Duration
}

// NewService creates a refresh service
func NewService(jobStore JobStore, fetcher Fetcher, parser *feed.Parser, rates RateSource, pricer Pricer, writer *Writer, clock adapter.Clock, opts Options) *Service {
	poolSize := opts.PoolSize
	if poolSize <= 0 {
		poolSize = len(domain.FeedTypes())
	}

	return &Service{
		store:     jobStore,
		fetcher:   fetcher,
		parser:    parser,
		rates:     rates,
		pricer:    pricer,
		writer:    writer,
		guard:     NewGuard(),
		clock:     clock,
		pool:      pond.NewPool(poolSize),
		typePause: opts.TypePause,
	}
}

// InProgress reports whether a refresh of the given type is running
func (s *Service) InProgress(feedType domain.FeedType) bool {
	return s.guard.InProgress(feedType)
}

// Refresh wipes and reloads the catalog for one feed type. The whole run is
// recorded as an import job moving PENDING -> IN_PROGRESS -> COMPLETED or
// FAILED. Returns domain.ErrRefreshInProgress when a refresh of the same
// type is already running; callers should treat that as a normal outcome,
// not a failure to retry.
func (s *Service) Refresh(ctx context.Context, feedType domain.FeedType) (domain.RefreshResult, error) {
	if !feedType.Valid() {
		return s.failure(feedType, fmt.Sprintf("unsupported feed type %q", feedType)),
			fmt.Errorf("unsupported feed type %q", feedType)
	}

	if !s.guard.TryAcquire(feedType) {
		logger.Info("refresh already in progress, rejecting",
			zap.String("type", string(feedType)))
		return s.failure(feedType, fmt.Sprintf("import already in progress for %s diamonds", feedType)),
			domain.ErrRefreshInProgress
	}
	defer s.guard.Release(feedType)

	return s.refreshLocked(ctx, feedType)
}

// refreshLocked runs the refresh lifecycle. The caller holds the per-type
// guard and releases it afterwards.
func (s *Service) refreshLocked(ctx context.Context, feedType domain.FeedType) (domain.RefreshResult, error) {
	job := &schema.ImportJob{
		ID:     uuid.New(),
		Type:   feedType,
		Status: domain.ImportStatusPending,
	}
	if err := s.store.CreateImportJob(ctx, job); err != nil {
		return s.failure(feedType, "failed to create import job"), err
	}

	logger.Info("refresh started",
		zap.String("type", string(feedType)),
		zap.String("job_id", job.ID.String()))

	total, err := s.run(ctx, feedType, job.ID)
	if err != nil {
		s.finishJob(job.ID, domain.ImportStatusFailed, total, err.Error())
		logger.Error(err,
			zap.String("type", string(feedType)),
			zap.String("job_id", job.ID.String()))
		return s.failure(feedType, err.Error()), err
	}

	s.finishJob(job.ID, domain.ImportStatusCompleted, total, "")
	logger.Info("refresh completed",
		zap.String("type", string(feedType)),
		zap.String("job_id", job.ID.String()),
		zap.Int("imported", total))

	return domain.RefreshResult{
		Type:         feedType,
		Success:      true,
		Message:      fmt.Sprintf("successfully updated %s diamonds, imported %d items", feedType, total),
		UpdatedCount: total,
		Timestamp:    s.clock.Now().UTC(),
	}, nil
}

// RefreshAsync triggers a refresh as fire-and-forget background work so a
// slow feed does not block the caller. Returns domain.ErrRefreshInProgress
// when one is already running for the type.
func (s *Service) RefreshAsync(feedType domain.FeedType) error {
	if !feedType.Valid() {
		return fmt.Errorf("unsupported feed type %q", feedType)
	}
	// Claim the slot before accepting so two simultaneous triggers cannot
	// both report success
	if !s.guard.TryAcquire(feedType) {
		return domain.ErrRefreshInProgress
	}

	s.pool.Submit(func() {
		// Detached from the triggering request; a refresh runs to completion
		// or failure once started.
		defer s.guard.Release(feedType)
		if _, err := s.refreshLocked(context.Background(), feedType); err != nil {
			logger.Error(err, zap.String("type", string(feedType)))
		}
	})

	return nil
}

// RefreshAll refreshes every feed type sequentially, pausing between types
// to keep peak memory down
func (s *Service) RefreshAll(ctx context.Context) []domain.RefreshResult {
	feedTypes := domain.FeedTypes()
	results := make([]domain.RefreshResult, 0, len(feedTypes))

	for i, feedType := range feedTypes {
		if i > 0 && s.typePause > 0 {
			logger.Info("pausing between feed types",
				zap.Duration("pause", s.typePause))
			s.clock.Sleep(s.typePause)
		}

		result, err := s.Refresh(ctx, feedType)
		if err != nil && !errors.Is(err, domain.ErrRefreshInProgress) {
			logger.Error(err, zap.String("type", string(feedType)))
		}
		results = append(results, result)
	}

	return results
}

// Stop waits for background refreshes to finish
func (s *Service) Stop() {
	s.pool.StopAndWait()
}

// run executes the clear-then-reload pipeline for one feed type
func (s *Service) run(ctx context.Context, feedType domain.FeedType, jobID uuid.UUID) (int, error) {
	now := s.clock.Now().UTC()
	inProgress := domain.ImportStatusInProgress
	if err := s.store.UpdateImportJob(ctx, jobID, store.ImportJobUpdate{
		Status:    &inProgress,
		StartedAt: &now,
	}); err != nil {
		return 0, err
	}

	// Resolve the exchange rate once per refresh; every record of the run is
	// priced against the same rate. A missing rate degrades the run to
	// source-currency prices instead of failing it.
	rate, err := s.rates.CurrentRate(ctx)
	hasRate := err == nil
	if err != nil && !errors.Is(err, domain.ErrRateUnavailable) {
		return 0, err
	}
	if !hasRate {
		logger.Warn("no exchange rate available, importing without converted prices",
			zap.String("type", string(feedType)))
	}

	deleted, err := s.store.DeleteDiamondsByType(ctx, feedType)
	if err != nil {
		return 0, err
	}
	logger.Info("cleared existing diamonds",
		zap.String("type", string(feedType)),
		zap.Int64("deleted", deleted))

	stream, err := s.fetcher.Fetch(ctx, feedType)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := stream.Close(); err != nil {
			logger.Warn("failed to close feed stream", zap.Error(err))
		}
	}()

	imported := 0
	total, err := s.parser.Parse(ctx, stream, feedType, func(ctx context.Context, chunk []*domain.ParsedDiamond) error {
		s.priceChunk(ctx, chunk, feedType, rate, hasRate)

		written, err := s.writer.WriteChunk(ctx, chunk, feedType, jobID)
		imported += written
		if err != nil {
			return err
		}

		processed := imported
		if err := s.store.UpdateImportJob(ctx, jobID, store.ImportJobUpdate{
			ProcessedRecords: &processed,
		}); err != nil {
			return err
		}

		logger.Debug("refresh progress",
			zap.String("type", string(feedType)),
			zap.Int("imported", imported))
		return nil
	})
	if err != nil {
		return imported, err
	}

	return total, nil
}

// priceChunk derives the converted and final prices for every record of a
// chunk. Records without a source price, or runs without a rate, keep nil
// prices; pricing never fails a refresh.
func (s *Service) priceChunk(ctx context.Context, chunk []*domain.ParsedDiamond, source domain.FeedType, rate float64, hasRate bool) {
	if !hasRate {
		return
	}

	for _, record := range chunk {
		if record.TotalPrice == nil {
			continue
		}

		converted := math.Round(*record.TotalPrice*rate*100) / 100
		record.TotalPriceSek = &converted

		final := s.pricer.FinalPriceSEK(ctx, record.EffectiveType(source), converted, record.Carat)
		if final > 0 {
			record.FinalPriceSek = &final
		}
	}
}

// finishJob moves a job into its terminal state. Runs on a background
// context so a canceled refresh context cannot leave the job dangling in
// IN_PROGRESS.
func (s *Service) finishJob(jobID uuid.UUID, status domain.ImportStatus, total int, errMsg string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := s.clock.Now().UTC()
	update := store.ImportJobUpdate{
		Status:      &status,
		CompletedAt: &now,
	}
	if status == domain.ImportStatusCompleted {
		update.TotalRecords = &total
		update.ProcessedRecords = &total
	}
	if errMsg != "" {
		update.ErrorMessage = &errMsg
	}

	if err := s.store.UpdateImportJob(ctx, jobID, update); err != nil {
		logger.Error(err, zap.String("job_id", jobID.String()))
	}
}

func (s *Service) failure(feedType domain.FeedType, message string) domain.RefreshResult {
	return domain.RefreshResult{
		Type:      feedType,
		Success:   false,
		Message:   message,
		Timestamp: s.clock.Now().UTC(),
	}
}
