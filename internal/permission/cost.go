package permission

import "github.com/pixelmint/backend/internal/domain"

// ResourceData carries the request-specific attributes that influence the
// credit cost of a feature invocation.
type ResourceData struct {
	Quantity int
	Width    int
	Height   int
}

// largePixelThreshold marks renders of one megapixel and above as large,
// which adds a per-image surcharge.
const largePixelThreshold = 1 << 20

var baseCost = map[domain.Feature]int{
	domain.FeatureImageGenerate: 1,
	domain.FeatureImageUpscale:  2,
	domain.FeatureImageEnhance:  1,
	domain.FeatureVideoGenerate: 10,
	domain.FeatureBatchExport:   5,
}

// Cost computes the credit cost for invoking a feature with the given
// resource data. Quantity below one counts as one.
func Cost(feature domain.Feature, res ResourceData) int {
	qty := res.Quantity
	if qty < 1 {
		qty = 1
	}
	per := baseCost[feature]
	if per == 0 {
		per = 1
	}
	if res.Width*res.Height >= largePixelThreshold {
		per++
	}
	return per * qty
}
