package domain

// Feature identifies a gated product capability. The set is closed: values
// outside this list are rejected at the parse boundary, so everything past
// it can treat a Feature as known.
type Feature string

const (
	FeatureImageGenerate Feature = "image_generate"
	FeatureImageUpscale  Feature = "image_upscale"
	FeatureImageEnhance  Feature = "image_enhance"
	FeatureVideoGenerate Feature = "video_generate"
	FeatureBatchExport   Feature = "batch_export"
)

// AllFeatures lists every known feature in a stable order.
var AllFeatures = []Feature{
	FeatureImageGenerate,
	FeatureImageUpscale,
	FeatureImageEnhance,
	FeatureVideoGenerate,
	FeatureBatchExport,
}

// ParseFeature validates a wire value against the closed enumeration.
func ParseFeature(s string) (Feature, error) {
	f := Feature(s)
	for _, known := range AllFeatures {
		if f == known {
			return f, nil
		}
	}
	return "", ErrUnknownFeature
}

// FeatureSet maps every known feature to whether a plan enables it. Sets
// are total: lookups never distinguish "absent" from "disabled".
type FeatureSet map[Feature]bool

// NewFeatureSet builds a total set with the given features enabled.
func NewFeatureSet(enabled ...Feature) FeatureSet {
	set := make(FeatureSet, len(AllFeatures))
	for _, f := range AllFeatures {
		set[f] = false
	}
	for _, f := range enabled {
		set[f] = true
	}
	return set
}

// Enabled reports whether the feature is turned on in this set.
func (s FeatureSet) Enabled(f Feature) bool {
	return s[f]
}

// Clone returns an independent copy of the set.
func (s FeatureSet) Clone() FeatureSet {
	if s == nil {
		return nil
	}
	out := make(FeatureSet, len(s))
	for f, on := range s {
		out[f] = on
	}
	return out
}
