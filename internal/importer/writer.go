package importer

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/nordicgem/diamond-indexer/internal/adapter"
	"github.com/nordicgem/diamond-indexer/internal/domain"
	"github.com/nordicgem/diamond-indexer/internal/store/schema"
)

// BatchStore is the slice of the persistence layer the writer needs
type BatchStore interface {
	// UpsertDiamondBatch inserts the given rows, updating the price and
	// bookkeeping columns on item_id conflicts
	UpsertDiamondBatch(ctx context.Context, diamonds []*schema.Diamond) error
}

// Writer persists parsed records in paced batches. Refreshes run on small
// instances next to a busy API; the sub-chunk batch size, the inter-batch
// delay and the memory release hint all keep one refresh from starving the
// rest of the process.
type Writer struct {
	store      BatchStore
	clock      adapter.Clock
	batchSize  int
	batchDelay time.Duration
}

// NewWriter creates a writer with the given batch tuning
func NewWriter(batchStore BatchStore, clock adapter.Clock, batchSize int, batchDelay time.Duration) *Writer {
	if batchSize <= 0 {
		batchSize = 800
	}
	return &Writer{
		store:      batchStore,
		clock:      clock,
		batchSize:  batchSize,
		batchDelay: batchDelay,
	}
}

// WriteChunk upserts one parsed chunk, splitting it into paced batches.
// Returns the number of records written.
func (w *Writer) WriteChunk(ctx context.Context, records []*domain.ParsedDiamond, source domain.FeedType, jobID uuid.UUID) (int, error) {
	written := 0

	for start := 0; start < len(records); start += w.batchSize {
		end := min(start+w.batchSize, len(records))

		// Hint the runtime to return freed parse buffers before the next
		// allocation-heavy insert
		debug.FreeOSMemory()

		batch := make([]*schema.Diamond, 0, end-start)
		for _, record := range records[start:end] {
			batch = append(batch, mapRecord(record, source, jobID))
		}

		if err := w.store.UpsertDiamondBatch(ctx, batch); err != nil {
			return written, err
		}
		written += len(batch)

		if end < len(records) && w.batchDelay > 0 {
			w.clock.Sleep(w.batchDelay)
		}
	}

	return written, nil
}

// mapRecord converts a parsed record into its persisted shape. The feed type
// is the effective one, so records reclassified during parsing land as lab.
func mapRecord(d *domain.ParsedDiamond, source domain.FeedType, jobID uuid.UUID) *schema.Diamond {
	return &schema.Diamond{
		ItemID:      d.ItemID,
		Type:        d.EffectiveType(source),
		ImportJobID: &jobID,

		SupplierStockRef:           d.SupplierStockRef,
		Cut:                        d.Cut,
		Carat:                      d.Carat,
		Color:                      d.Color,
		NaturalFancyColor:          d.NaturalFancyColor,
		NaturalFancyColorIntensity: d.NaturalFancyColorIntensity,
		NaturalFancyColorOvertone:  d.NaturalFancyColorOvertone,
		TreatedColor:               d.TreatedColor,
		Clarity:                    d.Clarity,
		CutGrade:                   d.CutGrade,
		GradingLab:                 d.GradingLab,
		CertificateNumber:          d.CertificateNumber,
		CertificatePath:            d.CertificatePath,
		CertificateURL:             d.CertificateURL,
		ImagePath:                  d.ImagePath,
		OnlineReport:               d.OnlineReport,
		OnlineReportURL:            d.OnlineReportURL,
		VideoURL:                   d.VideoURL,
		ThreeDViewerURL:            d.ThreeDViewerURL,
		PricePerCarat:              d.PricePerCarat,
		TotalPrice:                 d.TotalPrice,
		TotalPriceSek:              d.TotalPriceSek,
		FinalPriceSek:              d.FinalPriceSek,
		PercentOffIdexList:         d.PercentOffIdexList,
		Polish:                     d.Polish,
		Symmetry:                   d.Symmetry,
		MeasurementsLength:         d.MeasurementsLength,
		MeasurementsWidth:          d.MeasurementsWidth,
		MeasurementsHeight:         d.MeasurementsHeight,
		DepthPercent:               d.DepthPercent,
		TablePercent:               d.TablePercent,
		CrownHeight:                d.CrownHeight,
		CrownAngle:                 d.CrownAngle,
		PavilionDepth:              d.PavilionDepth,
		PavilionAngle:              d.PavilionAngle,
		GirdleFrom:                 d.GirdleFrom,
		GirdleTo:                   d.GirdleTo,
		CuletSize:                  d.CuletSize,
		CuletCondition:             d.CuletCondition,
		Graining:                   d.Graining,
		FluorescenceIntensity:      d.FluorescenceIntensity,
		FluorescenceColor:          d.FluorescenceColor,
		Enhancement:                d.Enhancement,
		Country:                    d.Country,
		CountryCode:                d.CountryCode,
		CountryName:                d.CountryName,
		StateRegion:                d.StateRegion,
		StateCode:                  d.StateCode,
		StateName:                  d.StateName,
		PairStockRef:               d.PairStockRef,
		PairSeparable:              d.PairSeparable,
		AskingPriceForPair:         d.AskingPriceForPair,
		AskingPricePerCaratForPair: d.AskingPricePerCaratForPair,
		Shade:                      d.Shade,
		Milky:                      d.Milky,
		BlackInclusion:             d.BlackInclusion,
		EyeClean:                   d.EyeClean,
		ProvenanceReport:           d.ProvenanceReport,
		ProvenanceNumber:           d.ProvenanceNumber,
		Brand:                      d.Brand,
		GuaranteedAvailability:     d.GuaranteedAvailability,
		Availability:               d.Availability,
	}
}
