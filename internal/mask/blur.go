package mask

// Blur curve constants. All derived parameters are monotonic in the user's
// blur amount so the settings slider never reverses perceived strength.
const (
	// MaxRadius is the blur radius in pixels at amount = 1.
	MaxRadius = 30.0

	// SaturationGain scales the saturation boost; amount 0 leaves color
	// untouched, amount 1 yields 1 + SaturationGain.
	SaturationGain = 0.8

	// VisibilityThreshold is the amount below which the backdrop is hidden
	// outright rather than paying compositing cost for an invisible layer.
	VisibilityThreshold = 0.02

	// PerformanceThreshold is the amount above which the backdrop samples
	// at reduced resolution; strong blur hides the downsampling artifacts.
	PerformanceThreshold = 0.6

	FullScale    = 1.0
	ReducedScale = 0.5

	// BleedGain and MaxBleed control how far sampling extends past the
	// surface edge to avoid fringing, capped to bound cost.
	BleedGain = 0.5
	MaxBleed  = 20.0
)

// BlurParams are the derived backdrop filter settings for one surface.
type BlurParams struct {
	Radius     float64
	Saturation float64
	Scale      float64
	Bleed      float64
	Hidden     bool
}

// Blur derives the backdrop parameters for a blur amount in [0, 1].
//
// The radius follows a quadratic curve: squaring the amount gives finer
// control at low settings than a linear mapping would.
func Blur(amount float64) BlurParams {
	if amount < 0 {
		amount = 0
	}
	if amount > 1 {
		amount = 1
	}

	radius := amount * amount * MaxRadius

	scale := FullScale
	if amount > PerformanceThreshold {
		scale = ReducedScale
	}

	bleed := 0.0
	if radius > 0 {
		bleed = radius * BleedGain
		if bleed > MaxBleed {
			bleed = MaxBleed
		}
	}

	return BlurParams{
		Radius:     radius,
		Saturation: 1 + amount*SaturationGain,
		Scale:      scale,
		Bleed:      bleed,
		Hidden:     amount <= VisibilityThreshold,
	}
}
