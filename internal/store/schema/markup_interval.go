package schema

import (
	"time"

	"github.com/nordicgem/diamond-indexer/internal/domain"
)

// MarkupInterval represents the markup_intervals table - one carat band of the
// pricing ladder for a feed type. Bands are half-open [min, max) except the
// highest band for a type, which also includes its upper bound.
type MarkupInterval struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Type is the feed type the band applies to
	Type domain.FeedType `gorm:"column:type;not null;type:text;uniqueIndex:idx_markup_intervals_band,priority:1"`
	// MinCarat is the inclusive lower bound of the band
	MinCarat float64 `gorm:"column:min_carat;not null;uniqueIndex:idx_markup_intervals_band,priority:2"`
	// MaxCarat is the upper bound of the band
	MaxCarat float64 `gorm:"column:max_carat;not null;uniqueIndex:idx_markup_intervals_band,priority:3"`
	// Multiplier is the markup factor applied to the converted price
	Multiplier float64 `gorm:"column:multiplier;not null"`
	// CreatedAt is the timestamp when this band was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
	// UpdatedAt is the timestamp when this band was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the MarkupInterval model
func (MarkupInterval) TableName() string {
	return "markup_intervals"
}
