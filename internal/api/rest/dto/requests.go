package dto

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nordicgem/diamond-indexer/internal/domain"
	"github.com/nordicgem/diamond-indexer/internal/store/schema"
	"github.com/nordicgem/diamond-indexer/internal/tiering"
)

// TriggerImportRequest is the optional body of POST /imports/:type. Force is
// accepted for storefront compatibility; a refresh is unconditional either way.
type TriggerImportRequest struct {
	Force bool `json:"force"`
}

// ImportJob is the API shape of one import job
type ImportJob struct {
	ID               uuid.UUID           `json:"id"`
	Type             domain.FeedType     `json:"type"`
	Status           domain.ImportStatus `json:"status"`
	TotalRecords     *int                `json:"totalRecords"`
	ProcessedRecords int                 `json:"processedRecords"`
	Error            *string             `json:"error"`
	StartedAt        *time.Time          `json:"startedAt"`
	CompletedAt      *time.Time          `json:"completedAt"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

// FromImportJob maps a stored job to its API shape
func FromImportJob(job *schema.ImportJob) ImportJob {
	return ImportJob{
		ID:               job.ID,
		Type:             job.Type,
		Status:           job.Status,
		TotalRecords:     job.TotalRecords,
		ProcessedRecords: job.ProcessedRecords,
		Error:            job.ErrorMessage,
		StartedAt:        job.StartedAt,
		CompletedAt:      job.CompletedAt,
		CreatedAt:        job.CreatedAt,
		UpdatedAt:        job.UpdatedAt,
	}
}

// FromImportJobs maps a job listing
func FromImportJobs(jobs []*schema.ImportJob) []ImportJob {
	out := make([]ImportJob, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, FromImportJob(job))
	}
	return out
}

// MarkupInterval is the API shape of one markup band
type MarkupInterval struct {
	MinCarat   float64 `json:"minCarat"`
	MaxCarat   float64 `json:"maxCarat"`
	Multiplier float64 `json:"multiplier"`
}

// FromMarkupIntervals maps a stored ladder
func FromMarkupIntervals(intervals []*schema.MarkupInterval) []MarkupInterval {
	out := make([]MarkupInterval, 0, len(intervals))
	for _, in := range intervals {
		out = append(out, MarkupInterval{
			MinCarat:   in.MinCarat,
			MaxCarat:   in.MaxCarat,
			Multiplier: in.Multiplier,
		})
	}
	return out
}

// ToSchemaIntervals converts the request bands to storage rows
func ToSchemaIntervals(intervals []MarkupInterval) []*schema.MarkupInterval {
	out := make([]*schema.MarkupInterval, 0, len(intervals))
	for _, in := range intervals {
		out = append(out, &schema.MarkupInterval{
			MinCarat:   in.MinCarat,
			MaxCarat:   in.MaxCarat,
			Multiplier: in.Multiplier,
		})
	}
	return out
}

// ToTiering converts the request bands to resolver intervals for validation
func (r *ReplaceMarkupIntervalsRequest) toTiering() []tiering.Interval {
	out := make([]tiering.Interval, 0, len(r.Intervals))
	for _, in := range r.Intervals {
		out = append(out, tiering.Interval{
			Min:        in.MinCarat,
			Max:        in.MaxCarat,
			Multiplier: in.Multiplier,
		})
	}
	return out
}

// ReplaceMarkupIntervalsRequest is the body of PUT /markup-intervals
type ReplaceMarkupIntervalsRequest struct {
	Type      domain.FeedType  `json:"type"`
	Intervals []MarkupInterval `json:"intervals"`
}

// Validate checks the replacement ladder: a known feed type and a sorted,
// non-overlapping set of bands with positive multipliers
func (r *ReplaceMarkupIntervalsRequest) Validate() error {
	if !r.Type.Valid() {
		return fmt.Errorf("unknown feed type %q", r.Type)
	}
	if len(r.Intervals) == 0 {
		return errors.New("at least one interval is required")
	}

	intervals := r.toTiering()
	for i, in := range intervals {
		if in.Max <= in.Min {
			return fmt.Errorf("interval %d: max carat must exceed min carat", i)
		}
		if in.Multiplier <= 0 {
			return fmt.Errorf("interval %d: multiplier must be positive", i)
		}
		if i > 0 {
			if in.Min < intervals[i-1].Min {
				return errors.New("intervals must be sorted by min carat")
			}
			if in.Min < intervals[i-1].Max {
				return errors.New("intervals must not overlap")
			}
		}
	}

	return nil
}
