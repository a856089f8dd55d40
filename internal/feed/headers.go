package feed

import (
	"strconv"
	"strings"

	"github.com/nordicgem/diamond-indexer/internal/domain"
)

// column maps one positional CSV cell onto a parsed record. The supplier
// files carry no header row; layout is fixed per feed format.
type column struct {
	name string
	set  func(d *domain.ParsedDiamond, value string)
}

// text binds a column to a string attribute
func text(assign func(d *domain.ParsedDiamond, v *string)) func(*domain.ParsedDiamond, string) {
	return func(d *domain.ParsedDiamond, value string) {
		assign(d, &value)
	}
}

// number binds a column to a numeric attribute. Unparseable cells are
// dropped rather than failing the row; the feeds contain stray junk.
func number(assign func(d *domain.ParsedDiamond, v *float64)) func(*domain.ParsedDiamond, string) {
	return func(d *domain.ParsedDiamond, value string) {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return
		}
		assign(d, &f)
	}
}

// triState binds a column whose cells are "Yes"/"No" plus occasional free
// text. Yes and No normalize to boolean literals, case-insensitively;
// anything else passes through untouched.
func triState(assign func(d *domain.ParsedDiamond, v *string)) func(*domain.ParsedDiamond, string) {
	return func(d *domain.ParsedDiamond, value string) {
		switch strings.ToLower(value) {
		case "yes":
			value = "true"
		case "no":
			value = "false"
		}
		assign(d, &value)
	}
}

// setMeasurements splits the combined "LxWxH" cell of the natural feed into
// the three measurement attributes
func setMeasurements(d *domain.ParsedDiamond, value string) {
	parts := strings.Split(value, "x")
	if len(parts) != 3 {
		return
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64); err == nil {
		d.MeasurementsLength = &f
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err == nil {
		d.MeasurementsWidth = &f
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64); err == nil {
		d.MeasurementsHeight = &f
	}
}

// setGirdle splits the combined "From / To" girdle cell of the natural feed
func setGirdle(d *domain.ParsedDiamond, value string) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return
	}
	from := strings.TrimSpace(parts[0])
	to := strings.TrimSpace(parts[1])
	d.GirdleFrom = &from
	d.GirdleTo = &to
}

// skip marks a positional cell that carries nothing
func skip(string) *column {
	return &column{name: "_EMPTY_FIELD_", set: func(*domain.ParsedDiamond, string) {}}
}

// naturalColumns is the positional layout of the naturally-mined full feed
// (format_20220525_basis). The file carries a trailing empty field per row.
var naturalColumns = []*column{
	{name: "Item ID #", set: func(d *domain.ParsedDiamond, v string) { d.ItemID = v }},
	{name: "Cut", set: text(func(d *domain.ParsedDiamond, v *string) { d.Cut = v })},
	{name: "Carat", set: number(func(d *domain.ParsedDiamond, v *float64) { d.Carat = v })},
	{name: "Color", set: text(func(d *domain.ParsedDiamond, v *string) { d.Color = v })},
	{name: "Natural Fancy Color", set: text(func(d *domain.ParsedDiamond, v *string) { d.NaturalFancyColor = v })},
	{name: "Natural Fancy Color Intensity", set: text(func(d *domain.ParsedDiamond, v *string) { d.NaturalFancyColorIntensity = v })},
	{name: "Natural Fancy Color Overtone", set: text(func(d *domain.ParsedDiamond, v *string) { d.NaturalFancyColorOvertone = v })},
	{name: "Treated Color", set: text(func(d *domain.ParsedDiamond, v *string) { d.TreatedColor = v })},
	{name: "Clarity", set: text(func(d *domain.ParsedDiamond, v *string) { d.Clarity = v })},
	{name: "Make (Cut Grade)", set: text(func(d *domain.ParsedDiamond, v *string) { d.CutGrade = v })},
	{name: "Grading Lab", set: text(func(d *domain.ParsedDiamond, v *string) { d.GradingLab = v })},
	{name: "Certificate Number", set: text(func(d *domain.ParsedDiamond, v *string) { d.CertificateNumber = v })},
	{name: "Certificate Path", set: text(func(d *domain.ParsedDiamond, v *string) { d.CertificatePath = v })},
	{name: "Image Path", set: text(func(d *domain.ParsedDiamond, v *string) { d.ImagePath = v })},
	{name: "Online Report", set: text(func(d *domain.ParsedDiamond, v *string) { d.OnlineReport = v })},
	{name: "Price Per Carat", set: number(func(d *domain.ParsedDiamond, v *float64) { d.PricePerCarat = v })},
	{name: "Total Price", set: number(func(d *domain.ParsedDiamond, v *float64) { d.TotalPrice = v })},
	{name: "% Off IDEX List", set: number(func(d *domain.ParsedDiamond, v *float64) { d.PercentOffIdexList = v })},
	{name: "Polish", set: text(func(d *domain.ParsedDiamond, v *string) { d.Polish = v })},
	{name: "Symmetry", set: text(func(d *domain.ParsedDiamond, v *string) { d.Symmetry = v })},
	{name: "Measurements (LengthxWidthxHeight)", set: setMeasurements},
	{name: "Depth", set: number(func(d *domain.ParsedDiamond, v *float64) { d.DepthPercent = v })},
	{name: "Table", set: number(func(d *domain.ParsedDiamond, v *float64) { d.TablePercent = v })},
	{name: "Crown Height", set: number(func(d *domain.ParsedDiamond, v *float64) { d.CrownHeight = v })},
	{name: "Pavilion Depth", set: number(func(d *domain.ParsedDiamond, v *float64) { d.PavilionDepth = v })},
	{name: "Girdle (From / To)", set: setGirdle},
	{name: "Culet Size", set: text(func(d *domain.ParsedDiamond, v *string) { d.CuletSize = v })},
	{name: "Culet Condition", set: text(func(d *domain.ParsedDiamond, v *string) { d.CuletCondition = v })},
	{name: "Graining", set: text(func(d *domain.ParsedDiamond, v *string) { d.Graining = v })},
	{name: "Fluorescence Intensity", set: text(func(d *domain.ParsedDiamond, v *string) { d.FluorescenceIntensity = v })},
	{name: "Fluorescence Color", set: text(func(d *domain.ParsedDiamond, v *string) { d.FluorescenceColor = v })},
	{name: "Enhancement", set: text(func(d *domain.ParsedDiamond, v *string) { d.Enhancement = v })},
	{name: "Country", set: text(func(d *domain.ParsedDiamond, v *string) { d.Country = v })},
	{name: "State / Region", set: text(func(d *domain.ParsedDiamond, v *string) { d.StateRegion = v })},
	{name: "Pair Stock Ref.", set: text(func(d *domain.ParsedDiamond, v *string) { d.PairStockRef = v })},
	skip("_EMPTY_FIELD_"),
}

// labColumns is the positional layout of the lab-grown full file
// (format_lg_20221130)
var labColumns = []*column{
	{name: "Item ID", set: func(d *domain.ParsedDiamond, v string) { d.ItemID = v }},
	{name: "Supplier Stock Ref", set: text(func(d *domain.ParsedDiamond, v *string) { d.SupplierStockRef = v })},
	{name: "Cut", set: text(func(d *domain.ParsedDiamond, v *string) { d.Cut = v })},
	{name: "Carat", set: number(func(d *domain.ParsedDiamond, v *float64) { d.Carat = v })},
	{name: "Color", set: text(func(d *domain.ParsedDiamond, v *string) { d.Color = v })},
	{name: "Natural Fancy Color", set: text(func(d *domain.ParsedDiamond, v *string) { d.NaturalFancyColor = v })},
	{name: "Natural Fancy Color Intensity", set: text(func(d *domain.ParsedDiamond, v *string) { d.NaturalFancyColorIntensity = v })},
	{name: "Natural Fancy Color Overtone", set: text(func(d *domain.ParsedDiamond, v *string) { d.NaturalFancyColorOvertone = v })},
	{name: "Treated Color", set: text(func(d *domain.ParsedDiamond, v *string) { d.TreatedColor = v })},
	{name: "Clarity", set: text(func(d *domain.ParsedDiamond, v *string) { d.Clarity = v })},
	{name: "Cut Grade", set: text(func(d *domain.ParsedDiamond, v *string) { d.CutGrade = v })},
	{name: "Grading Lab", set: text(func(d *domain.ParsedDiamond, v *string) { d.GradingLab = v })},
	{name: "Certificate Number", set: text(func(d *domain.ParsedDiamond, v *string) { d.CertificateNumber = v })},
	{name: "Certificate URL", set: text(func(d *domain.ParsedDiamond, v *string) { d.CertificateURL = v })},
	{name: "Image URL", set: text(func(d *domain.ParsedDiamond, v *string) { d.ImagePath = v })},
	{name: "Online Report URL", set: text(func(d *domain.ParsedDiamond, v *string) { d.OnlineReportURL = v })},
	{name: "Polish", set: text(func(d *domain.ParsedDiamond, v *string) { d.Polish = v })},
	{name: "Symmetry", set: text(func(d *domain.ParsedDiamond, v *string) { d.Symmetry = v })},
	{name: "Price Per Carat", set: number(func(d *domain.ParsedDiamond, v *float64) { d.PricePerCarat = v })},
	{name: "Total Price", set: number(func(d *domain.ParsedDiamond, v *float64) { d.TotalPrice = v })},
	{name: "Measurements Length", set: number(func(d *domain.ParsedDiamond, v *float64) { d.MeasurementsLength = v })},
	{name: "Measurements Width", set: number(func(d *domain.ParsedDiamond, v *float64) { d.MeasurementsWidth = v })},
	{name: "Measurements Height", set: number(func(d *domain.ParsedDiamond, v *float64) { d.MeasurementsHeight = v })},
	{name: "Depth", set: number(func(d *domain.ParsedDiamond, v *float64) { d.DepthPercent = v })},
	{name: "Table", set: number(func(d *domain.ParsedDiamond, v *float64) { d.TablePercent = v })},
	{name: "Crown Height", set: number(func(d *domain.ParsedDiamond, v *float64) { d.CrownHeight = v })},
	{name: "Crown Angle", set: number(func(d *domain.ParsedDiamond, v *float64) { d.CrownAngle = v })},
	{name: "Pavilion Depth", set: number(func(d *domain.ParsedDiamond, v *float64) { d.PavilionDepth = v })},
	{name: "Pavilion Angle", set: number(func(d *domain.ParsedDiamond, v *float64) { d.PavilionAngle = v })},
	{name: "Girdle From", set: text(func(d *domain.ParsedDiamond, v *string) { d.GirdleFrom = v })},
	{name: "Girdle To", set: text(func(d *domain.ParsedDiamond, v *string) { d.GirdleTo = v })},
	{name: "Culet Size", set: text(func(d *domain.ParsedDiamond, v *string) { d.CuletSize = v })},
	{name: "Culet Condition", set: text(func(d *domain.ParsedDiamond, v *string) { d.CuletCondition = v })},
	{name: "Graining", set: text(func(d *domain.ParsedDiamond, v *string) { d.Graining = v })},
	{name: "Fluorescence Intensity", set: text(func(d *domain.ParsedDiamond, v *string) { d.FluorescenceIntensity = v })},
	{name: "Fluorescence Color", set: text(func(d *domain.ParsedDiamond, v *string) { d.FluorescenceColor = v })},
	{name: "Enhancement", set: text(func(d *domain.ParsedDiamond, v *string) { d.Enhancement = v })},
	{name: "Country Code", set: text(func(d *domain.ParsedDiamond, v *string) { d.CountryCode = v })},
	{name: "Country Name", set: text(func(d *domain.ParsedDiamond, v *string) { d.CountryName = v })},
	{name: "State Code", set: text(func(d *domain.ParsedDiamond, v *string) { d.StateCode = v })},
	{name: "State Name", set: text(func(d *domain.ParsedDiamond, v *string) { d.StateName = v })},
	{name: "Pair Stock Ref", set: text(func(d *domain.ParsedDiamond, v *string) { d.PairStockRef = v })},
	{name: "Pair Separable", set: triState(func(d *domain.ParsedDiamond, v *string) { d.PairSeparable = v })},
	{name: "Asking Price Per Carat For Pair", set: number(func(d *domain.ParsedDiamond, v *float64) { d.AskingPricePerCaratForPair = v })},
	{name: "Shade", set: text(func(d *domain.ParsedDiamond, v *string) { d.Shade = v })},
	{name: "Milky", set: text(func(d *domain.ParsedDiamond, v *string) { d.Milky = v })},
	{name: "Black Inclusion", set: text(func(d *domain.ParsedDiamond, v *string) { d.BlackInclusion = v })},
	{name: "Eye Clean", set: text(func(d *domain.ParsedDiamond, v *string) { d.EyeClean = v })},
	{name: "Provenance Report", set: text(func(d *domain.ParsedDiamond, v *string) { d.ProvenanceReport = v })},
	{name: "Provenance Number", set: text(func(d *domain.ParsedDiamond, v *string) { d.ProvenanceNumber = v })},
	{name: "Brand", set: text(func(d *domain.ParsedDiamond, v *string) { d.Brand = v })},
	{name: "Availability", set: text(func(d *domain.ParsedDiamond, v *string) { d.Availability = v })},
	{name: "Video URL", set: text(func(d *domain.ParsedDiamond, v *string) { d.VideoURL = v })},
	{name: "3DViewer URL", set: text(func(d *domain.ParsedDiamond, v *string) { d.ThreeDViewerURL = v })},
}

// columnsFor returns the positional layout for a feed type
func columnsFor(feedType domain.FeedType) []*column {
	if feedType == domain.FeedTypeLab {
		return labColumns
	}
	return naturalColumns
}
