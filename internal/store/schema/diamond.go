package schema

import (
	"time"

	"github.com/google/uuid"

	"github.com/nordicgem/diamond-indexer/internal/domain"
)

// Diamond represents the diamonds table - one row per catalog stone.
// The supplier feeds are sparse, so every descriptive attribute is nullable;
// only the identity, type and bookkeeping columns are guaranteed present.
type Diamond struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ItemID is the supplier's stable identifier for the stone; upserts key on it
	ItemID string `gorm:"column:item_id;not null;uniqueIndex;type:text"`
	// Type is the feed the stone belongs to after reclassification (natural or lab)
	Type domain.FeedType `gorm:"column:type;not null;type:text;index"`
	// ImportJobID points at the refresh that last wrote this row
	ImportJobID *uuid.UUID `gorm:"column:import_job_id;type:uuid;index"`

	SupplierStockRef           *string  `gorm:"column:supplier_stock_ref;type:text"`
	Cut                        *string  `gorm:"column:cut;type:text"`
	Carat                      *float64 `gorm:"column:carat"`
	Color                      *string  `gorm:"column:color;type:text"`
	NaturalFancyColor          *string  `gorm:"column:natural_fancy_color;type:text"`
	NaturalFancyColorIntensity *string  `gorm:"column:natural_fancy_color_intensity;type:text"`
	NaturalFancyColorOvertone  *string  `gorm:"column:natural_fancy_color_overtone;type:text"`
	TreatedColor               *string  `gorm:"column:treated_color;type:text"`
	Clarity                    *string  `gorm:"column:clarity;type:text"`
	CutGrade                   *string  `gorm:"column:cut_grade;type:text"`
	GradingLab                 *string  `gorm:"column:grading_lab;type:text"`
	CertificateNumber          *string  `gorm:"column:certificate_number;type:text"`
	CertificatePath            *string  `gorm:"column:certificate_path;type:text"`
	CertificateURL             *string  `gorm:"column:certificate_url;type:text"`
	ImagePath                  *string  `gorm:"column:image_path;type:text"`
	OnlineReport               *string  `gorm:"column:online_report;type:text"`
	OnlineReportURL            *string  `gorm:"column:online_report_url;type:text"`
	VideoURL                   *string  `gorm:"column:video_url;type:text"`
	ThreeDViewerURL            *string  `gorm:"column:three_d_viewer_url;type:text"`
	PricePerCarat              *float64 `gorm:"column:price_per_carat"`
	TotalPrice                 *float64 `gorm:"column:total_price"`
	TotalPriceSek              *float64 `gorm:"column:total_price_sek"`
	FinalPriceSek              *float64 `gorm:"column:final_price_sek;index"`
	PercentOffIdexList         *float64 `gorm:"column:percent_off_idex_list"`
	Polish                     *string  `gorm:"column:polish;type:text"`
	Symmetry                   *string  `gorm:"column:symmetry;type:text"`
	MeasurementsLength         *float64 `gorm:"column:measurements_length"`
	MeasurementsWidth          *float64 `gorm:"column:measurements_width"`
	MeasurementsHeight         *float64 `gorm:"column:measurements_height"`
	DepthPercent               *float64 `gorm:"column:depth_percent"`
	TablePercent               *float64 `gorm:"column:table_percent"`
	CrownHeight                *float64 `gorm:"column:crown_height"`
	CrownAngle                 *float64 `gorm:"column:crown_angle"`
	PavilionDepth              *float64 `gorm:"column:pavilion_depth"`
	PavilionAngle              *float64 `gorm:"column:pavilion_angle"`
	GirdleFrom                 *string  `gorm:"column:girdle_from;type:text"`
	GirdleTo                   *string  `gorm:"column:girdle_to;type:text"`
	CuletSize                  *string  `gorm:"column:culet_size;type:text"`
	CuletCondition             *string  `gorm:"column:culet_condition;type:text"`
	Graining                   *string  `gorm:"column:graining;type:text"`
	FluorescenceIntensity      *string  `gorm:"column:fluorescence_intensity;type:text"`
	FluorescenceColor          *string  `gorm:"column:fluorescence_color;type:text"`
	Enhancement                *string  `gorm:"column:enhancement;type:text"`
	Country                    *string  `gorm:"column:country;type:text"`
	CountryCode                *string  `gorm:"column:country_code;type:text"`
	CountryName                *string  `gorm:"column:country_name;type:text"`
	StateRegion                *string  `gorm:"column:state_region;type:text"`
	StateCode                  *string  `gorm:"column:state_code;type:text"`
	StateName                  *string  `gorm:"column:state_name;type:text"`
	PairStockRef               *string  `gorm:"column:pair_stock_ref;type:text"`
	PairSeparable              *string  `gorm:"column:pair_separable;type:text"`
	AskingPriceForPair         *float64 `gorm:"column:asking_price_for_pair"`
	AskingPricePerCaratForPair *float64 `gorm:"column:asking_price_per_carat_for_pair"`
	Shade                      *string  `gorm:"column:shade;type:text"`
	Milky                      *string  `gorm:"column:milky;type:text"`
	BlackInclusion             *string  `gorm:"column:black_inclusion;type:text"`
	EyeClean                   *string  `gorm:"column:eye_clean;type:text"`
	ProvenanceReport           *string  `gorm:"column:provenance_report;type:text"`
	ProvenanceNumber           *string  `gorm:"column:provenance_number;type:text"`
	Brand                      *string  `gorm:"column:brand;type:text"`
	GuaranteedAvailability     *string  `gorm:"column:guaranteed_availability;type:text"`
	Availability               *string  `gorm:"column:availability;type:text"`

	// CreatedAt is the timestamp when this record was first imported
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
	// UpdatedAt is the timestamp when this record was last touched by a refresh
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the Diamond model
func (Diamond) TableName() string {
	return "diamonds"
}
