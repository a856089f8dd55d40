package domain

import "time"

// FeedType identifies one of the two independent supplier feeds
type FeedType string

const (
	// FeedTypeNatural represents the naturally-mined diamond feed
	FeedTypeNatural FeedType = "natural"
	// FeedTypeLab represents the lab-grown diamond feed
	FeedTypeLab FeedType = "lab"
)

// Valid reports whether the feed type is one of the two known feeds
func (t FeedType) Valid() bool {
	return t == FeedTypeNatural || t == FeedTypeLab
}

// FeedTypes lists all known feed types in refresh order
func FeedTypes() []FeedType {
	return []FeedType{FeedTypeNatural, FeedTypeLab}
}

// ImportStatus represents the state of an import job
type ImportStatus string

const (
	ImportStatusPending    ImportStatus = "PENDING"
	ImportStatusInProgress ImportStatus = "IN_PROGRESS"
	ImportStatusCompleted  ImportStatus = "COMPLETED"
	ImportStatusFailed     ImportStatus = "FAILED"
)

// RefreshResult is the outcome returned to whoever triggered a feed refresh
type RefreshResult struct {
	Type         FeedType  `json:"type"`
	Success      bool      `json:"success"`
	Message      string    `json:"message"`
	UpdatedCount int       `json:"updatedCount,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// ParsedDiamond is the in-flight shape of one feed row after parsing and
// normalization. All descriptive attributes are optional; the supplier feeds
// are sparse. The persisted shape lives in store/schema and is produced from
// this one by the import writer.
type ParsedDiamond struct {
	ItemID string

	SupplierStockRef           *string
	Cut                        *string
	Carat                      *float64
	Color                      *string
	NaturalFancyColor          *string
	NaturalFancyColorIntensity *string
	NaturalFancyColorOvertone  *string
	TreatedColor               *string
	Clarity                    *string
	CutGrade                   *string
	GradingLab                 *string
	CertificateNumber          *string
	CertificatePath            *string
	CertificateURL             *string
	ImagePath                  *string
	OnlineReport               *string
	OnlineReportURL            *string
	VideoURL                   *string
	ThreeDViewerURL            *string
	PricePerCarat              *float64
	TotalPrice                 *float64
	TotalPriceSek              *float64
	FinalPriceSek              *float64
	PercentOffIdexList         *float64
	Polish                     *string
	Symmetry                   *string
	MeasurementsLength         *float64
	MeasurementsWidth          *float64
	MeasurementsHeight         *float64
	DepthPercent               *float64
	TablePercent               *float64
	CrownHeight                *float64
	CrownAngle                 *float64
	PavilionDepth              *float64
	PavilionAngle              *float64
	GirdleFrom                 *string
	GirdleTo                   *string
	CuletSize                  *string
	CuletCondition             *string
	Graining                   *string
	FluorescenceIntensity      *string
	FluorescenceColor          *string
	Enhancement                *string
	Country                    *string
	CountryCode                *string
	CountryName                *string
	StateRegion                *string
	StateCode                  *string
	StateName                  *string
	PairStockRef               *string
	PairSeparable              *string
	AskingPriceForPair         *float64
	AskingPricePerCaratForPair *float64
	Shade                      *string
	Milky                      *string
	BlackInclusion             *string
	EyeClean                   *string
	ProvenanceReport           *string
	ProvenanceNumber           *string
	Brand                      *string
	GuaranteedAvailability     *string
	Availability               *string

	// Reclassified marks a record pulled from the natural feed whose
	// certificate number carries the lab-grown marker. It is a transient
	// processing flag and is never persisted.
	Reclassified bool
}

// EffectiveType returns the feed type the record should be priced and stored
// under, accounting for reclassification.
func (d *ParsedDiamond) EffectiveType(source FeedType) FeedType {
	if d.Reclassified {
		return FeedTypeLab
	}
	return source
}
