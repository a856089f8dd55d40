package schema

import (
	"time"

	"github.com/google/uuid"

	"github.com/nordicgem/diamond-indexer/internal/domain"
)

// ImportJob represents the import_jobs table - one row per catalog refresh
// attempt. Status moves PENDING -> IN_PROGRESS -> COMPLETED or FAILED; a job
// never goes backwards.
type ImportJob struct {
	// ID is the job identifier handed back to refresh callers
	ID uuid.UUID `gorm:"column:id;primaryKey;type:uuid"`
	// Type is the feed being refreshed
	Type domain.FeedType `gorm:"column:type;not null;type:text;index"`
	// Status is the current lifecycle state of the job
	Status domain.ImportStatus `gorm:"column:status;not null;type:text"`
	// TotalRecords is the number of rows parsed from the feed, once known
	TotalRecords *int `gorm:"column:total_records"`
	// ProcessedRecords is the number of rows written so far
	ProcessedRecords int `gorm:"column:processed_records;not null;default:0"`
	// ErrorMessage records why the job failed
	ErrorMessage *string `gorm:"column:error_message;type:text"`
	// StartedAt is the timestamp when the job moved to IN_PROGRESS
	StartedAt *time.Time `gorm:"column:started_at"`
	// CompletedAt is the timestamp when the job reached a terminal state
	CompletedAt *time.Time `gorm:"column:completed_at"`
	// CreatedAt is the timestamp when the job was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
	// UpdatedAt is the timestamp when the job was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the ImportJob model
func (ImportJob) TableName() string {
	return "import_jobs"
}
