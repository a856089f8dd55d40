package feed

import (
	"strings"

	"github.com/nordicgem/diamond-indexer/internal/domain"
)

// labGrownMarker is the substring grading labs stamp into certificate numbers
// of lab-grown stones that occasionally leak into the natural feed
const labGrownMarker = "LG"

// IsLabGrownCertificate reports whether a certificate number carries the
// lab-grown marker, case-insensitively
func IsLabGrownCertificate(certificateNumber *string) bool {
	if certificateNumber == nil {
		return false
	}
	return strings.Contains(strings.ToUpper(*certificateNumber), labGrownMarker)
}

// reclassify flags records from the natural feed whose certificate identifies
// them as lab-grown. Reclassification only moves records natural -> lab; the
// lab feed is taken at its word.
func reclassify(d *domain.ParsedDiamond, source domain.FeedType) {
	if source != domain.FeedTypeNatural {
		return
	}
	if IsLabGrownCertificate(d.CertificateNumber) {
		d.Reclassified = true
	}
}
