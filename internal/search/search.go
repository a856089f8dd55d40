// Package search translates the storefront's facet selections into catalog
// queries. Facets arrive as min/max picks over ordinal grade scales plus a
// handful of free-form lists; the resolver turns them into the explicit label
// sets and numeric ranges the store understands, so the query layer never has
// to know about slider semantics.
package search

import (
	"strings"

	"github.com/nordicgem/diamond-indexer/internal/domain"
	"github.com/nordicgem/diamond-indexer/internal/store"
	"github.com/nordicgem/diamond-indexer/internal/tiering"
)

// DefaultLimit caps a search page when the caller does not ask for one
const DefaultLimit = 100

// Grade scales ordered worst to best, matching the storefront sliders. Only
// values that actually occur in the feeds are listed; a bound outside the
// scale leaves that side unconstrained.
var (
	colourScale       = []string{"K", "J", "I", "H", "G", "F", "E", "D"}
	clarityScale      = []string{"SI2", "SI1", "VS2", "VS1", "VVS2", "VVS1", "IF", "FL"}
	gradeScale        = []string{"Good", "Very Good", "Excellent"}
	fluorescenceScale = []string{"None", "Faint", "Medium", "Strong", "Very Strong"}

	// Simplified intensity stops shown on the slider, worst to best
	fancyIntensityScale = []string{"Light", "Fancy", "Intense", "Vivid", "Deep", "Dark"}

	// Feed values behind each simplified intensity stop
	fancyIntensityValues = map[string][]string{
		"Light":   {"Light", "Very Light", "Faint", "Fancy Light"},
		"Fancy":   {"Fancy"},
		"Intense": {"Intense"},
		"Vivid":   {"Vivid"},
		"Deep":    {"Fancy Deep"},
		"Dark":    {"Fancy Dark"},
	}

	// namedFancyColours are the colours with their own facet button. The
	// "other" bucket is everything fancy that mentions none of these.
	namedFancyColours = []string{
		"yellow", "pink", "blue", "red", "green", "purple", "orange",
		"violet", "gray", "black", "brown", "cognac", "white", "salt", "pepper",
	}
)

// AllFancy is the facet value selecting every fancy-coloured diamond
const AllFancy = "ALL_FANCY"

// Filters is the query-string shape of a catalog search. Ordinal facets come
// as min/max label picks; list facets as comma-separated values.
type Filters struct {
	Type  string `form:"type"`
	Shape string `form:"shape"`

	MinPrice    *float64 `form:"minPrice"`
	MaxPrice    *float64 `form:"maxPrice"`
	MinPriceSek *float64 `form:"minPriceSek"`
	MaxPriceSek *float64 `form:"maxPriceSek"`

	MinCarat *float64 `form:"minCarat"`
	MaxCarat *float64 `form:"maxCarat"`

	MinColour string `form:"minColour"`
	MaxColour string `form:"maxColour"`

	MinClarity string `form:"minClarity"`
	MaxClarity string `form:"maxClarity"`

	MinCutGrade string `form:"minCutGrade"`
	MaxCutGrade string `form:"maxCutGrade"`

	MinPolish string `form:"minPolish"`
	MaxPolish string `form:"maxPolish"`

	MinSymmetry string `form:"minSymmetry"`
	MaxSymmetry string `form:"maxSymmetry"`

	MinFluorescence string `form:"minFluorescence"`
	MaxFluorescence string `form:"maxFluorescence"`

	MinTable *float64 `form:"minTable"`
	MaxTable *float64 `form:"maxTable"`

	GradingLab string `form:"gradingLab"`

	FancyColours      string `form:"fancyColours"`
	MinFancyIntensity string `form:"minFancyIntensity"`
	MaxFancyIntensity string `form:"maxFancyIntensity"`

	Offset int `form:"offset"`
	Limit  int `form:"limit"`
}

// Resolve translates the facet selections into a store query. Unknown labels
// and malformed selections degrade to "no constraint" on that facet; a search
// never fails on filter input.
func (f Filters) Resolve() store.DiamondQuery {
	q := store.DiamondQuery{
		Offset: f.Offset,
		Limit:  f.Limit,
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}

	if t := domain.FeedType(f.Type); t.Valid() {
		q.Type = t
	}

	if f.Shape != "" {
		q.Cuts = splitList(f.Shape)
	}

	// SEK bounds act on the marked-up final price and win over USD bounds,
	// which act on the raw supplier price
	if f.MinPriceSek != nil || f.MaxPriceSek != nil {
		q.MinPrice = f.MinPriceSek
		q.MaxPrice = f.MaxPriceSek
	} else {
		q.MinPriceUSD = f.MinPrice
		q.MaxPriceUSD = f.MaxPrice
	}

	q.MinCarat = f.MinCarat
	q.MaxCarat = f.MaxCarat
	q.MinTable = f.MinTable
	q.MaxTable = f.MaxTable

	// A white-colour selection also excludes fancy-coloured stones; the two
	// colour systems are disjoint facets on the storefront
	if colours := tiering.ScaleRange(colourScale, f.MinColour, f.MaxColour); len(colours) > 0 {
		q.Colors = colours
		q.ExcludeFancy = true
	}

	q.Clarities = tiering.ScaleRange(clarityScale, f.MinClarity, f.MaxClarity)
	q.CutGrades = tiering.ScaleRange(gradeScale, f.MinCutGrade, f.MaxCutGrade)
	q.Polishes = tiering.ScaleRange(gradeScale, f.MinPolish, f.MaxPolish)
	q.Symmetries = tiering.ScaleRange(gradeScale, f.MinSymmetry, f.MaxSymmetry)
	q.Fluorescences = tiering.ScaleRange(fluorescenceScale, f.MinFluorescence, f.MaxFluorescence)

	if f.GradingLab != "" {
		q.GradingLabs = splitList(f.GradingLab)
	}

	f.resolveFancy(&q)

	return q
}

// resolveFancy applies the fancy-colour facet. ALL_FANCY selects every fancy
// stone; "other" selects fancy stones mentioning none of the named colours;
// "s-and-p" expands to salt and pepper. Named colours are matched as
// substrings because feed values are compounds like "Fancy Vivid Yellow".
func (f Filters) resolveFancy(q *store.DiamondQuery) {
	switch {
	case f.FancyColours == AllFancy:
		q.AnyFancy = true
	case f.FancyColours != "":
		var named []string
		other := false
		for _, colour := range splitList(f.FancyColours) {
			switch strings.ToLower(colour) {
			case "other":
				other = true
			case "s-and-p":
				named = append(named, "salt", "pepper")
			default:
				named = append(named, strings.ToLower(colour))
			}
		}
		// Named colours and the "other" bucket cannot be combined in one
		// query; when both are picked the named selection wins
		if len(named) > 0 {
			q.FancyColors = named
		} else if other {
			q.AnyFancy = true
			q.NotFancyColors = namedFancyColours
		}
	}

	if intensities := f.resolveIntensities(); len(intensities) > 0 {
		q.FancyIntensities = intensities
	}
}

func (f Filters) resolveIntensities() []string {
	stops := tiering.ScaleRange(fancyIntensityScale, f.MinFancyIntensity, f.MaxFancyIntensity)
	if len(stops) == 0 {
		return nil
	}
	var values []string
	for _, stop := range stops {
		values = append(values, fancyIntensityValues[stop]...)
	}
	return values
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
