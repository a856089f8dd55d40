package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/nordicgem/diamond-indexer/internal/domain"
	"github.com/nordicgem/diamond-indexer/internal/store/schema"
)

// Diamond is the API shape of one catalog stone. Field names follow the
// storefront's camelCase convention; absent feed attributes serialize as null.
type Diamond struct {
	ID     int64           `json:"id"`
	ItemID string          `json:"itemId"`
	Type   domain.FeedType `json:"type"`

	SupplierStockRef           *string  `json:"supplierStockRef"`
	Cut                        *string  `json:"cut"`
	Carat                      *float64 `json:"carat"`
	Color                      *string  `json:"color"`
	NaturalFancyColor          *string  `json:"naturalFancyColor"`
	NaturalFancyColorIntensity *string  `json:"naturalFancyColorIntensity"`
	NaturalFancyColorOvertone  *string  `json:"naturalFancyColorOvertone"`
	TreatedColor               *string  `json:"treatedColor"`
	Clarity                    *string  `json:"clarity"`
	CutGrade                   *string  `json:"cutGrade"`
	GradingLab                 *string  `json:"gradingLab"`
	CertificateNumber          *string  `json:"certificateNumber"`
	CertificatePath            *string  `json:"certificatePath"`
	CertificateURL             *string  `json:"certificateUrl"`
	ImagePath                  *string  `json:"imagePath"`
	OnlineReport               *string  `json:"onlineReport"`
	OnlineReportURL            *string  `json:"onlineReportUrl"`
	VideoURL                   *string  `json:"videoUrl"`
	ThreeDViewerURL            *string  `json:"threeDViewerUrl"`
	PricePerCarat              *float64 `json:"pricePerCarat"`
	TotalPrice                 *float64 `json:"totalPrice"`
	TotalPriceSek              *float64 `json:"totalPriceSek"`
	FinalPriceSek              *float64 `json:"finalPriceSek"`
	PercentOffIdexList         *float64 `json:"percentOffIdexList"`
	Polish                     *string  `json:"polish"`
	Symmetry                   *string  `json:"symmetry"`
	MeasurementsLength         *float64 `json:"measurementsLength"`
	MeasurementsWidth          *float64 `json:"measurementsWidth"`
	MeasurementsHeight         *float64 `json:"measurementsHeight"`
	DepthPercent               *float64 `json:"depthPercent"`
	TablePercent               *float64 `json:"tablePercent"`
	CrownHeight                *float64 `json:"crownHeight"`
	CrownAngle                 *float64 `json:"crownAngle"`
	PavilionDepth              *float64 `json:"pavilionDepth"`
	PavilionAngle              *float64 `json:"pavilionAngle"`
	GirdleFrom                 *string  `json:"girdleFrom"`
	GirdleTo                   *string  `json:"girdleTo"`
	CuletSize                  *string  `json:"culetSize"`
	CuletCondition             *string  `json:"culetCondition"`
	Graining                   *string  `json:"graining"`
	FluorescenceIntensity      *string  `json:"fluorescenceIntensity"`
	FluorescenceColor          *string  `json:"fluorescenceColor"`
	Enhancement                *string  `json:"enhancement"`
	Country                    *string  `json:"country"`
	CountryCode                *string  `json:"countryCode"`
	CountryName                *string  `json:"countryName"`
	StateRegion                *string  `json:"stateRegion"`
	StateCode                  *string  `json:"stateCode"`
	StateName                  *string  `json:"stateName"`
	PairStockRef               *string  `json:"pairStockRef"`
	PairSeparable              *string  `json:"pairSeparable"`
	AskingPriceForPair         *float64 `json:"askingPriceForPair"`
	AskingPricePerCaratForPair *float64 `json:"askingPricePerCaratForPair"`
	Shade                      *string  `json:"shade"`
	Milky                      *string  `json:"milky"`
	BlackInclusion             *string  `json:"blackInclusion"`
	EyeClean                   *string  `json:"eyeClean"`
	ProvenanceReport           *string  `json:"provenanceReport"`
	ProvenanceNumber           *string  `json:"provenanceNumber"`
	Brand                      *string  `json:"brand"`
	GuaranteedAvailability     *string  `json:"guaranteedAvailability"`
	Availability               *string  `json:"availability"`

	ImportJobID *uuid.UUID `json:"importJobId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// FromDiamond maps a stored row to its API shape
func FromDiamond(d *schema.Diamond) Diamond {
	return Diamond{
		ID:     d.ID,
		ItemID: d.ItemID,
		Type:   d.Type,

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

		ImportJobID: d.ImportJobID,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// FromDiamonds maps a result page. Always returns a non-nil slice so empty
// pages serialize as [] rather than null.
func FromDiamonds(diamonds []*schema.Diamond) []Diamond {
	out := make([]Diamond, 0, len(diamonds))
	for _, d := range diamonds {
		out = append(out, FromDiamond(d))
	}
	return out
}

// SearchDiamondsResponse is the paginated search result envelope
type SearchDiamondsResponse struct {
	Diamonds   []Diamond `json:"diamonds"`
	TotalCount uint64    `json:"totalCount"`
	Limit      int       `json:"limit"`
	Offset     int       `json:"offset"`
}
