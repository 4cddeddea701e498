package remote

import (
	"math/rand"

	"exoserve/ml"
)

// FallbackNote marks a degraded answer so callers can tell it apart from an
// authoritative one.
const FallbackNote = "This prediction was generated using fallback logic due to ML API unavailability"

// Fallback is a local heuristic stand-in for the authoritative classifier.
// Its confidence is synthetic, not derived from the input.
type Fallback struct {
	// randFloat is swappable in tests to pin the synthetic confidence.
	randFloat func() float64
}

func NewFallback() *Fallback {
	return &Fallback{randFloat: rand.Float64}
}

// Classify produces a result-shaped payload without any external call.
// A candidate passes the screen when it looks like a plausible, well-detected
// signal: period > 0.5 d, depth > 50 ppm, SNR > 7, and the drawn confidence
// clears 0.7.
func (f *Fallback) Classify(record ml.CandidateRecord) ml.ClassificationResult {
	confidence := ml.RoundConfidence(0.6 + f.randFloat()*0.35)

	period := valueOr(record.Period, 0)
	depth := valueOr(record.Depth, 0)
	snr := valueOr(record.SNR, 0)
	isExoplanet := period > 0.5 && depth > 50 && snr > 7 && confidence > 0.7

	var planetType *string
	if record.Radius != nil {
		label := fallbackPlanetType(*record.Radius)
		planetType = &label
	}

	return ml.ClassificationResult{
		CandidateIdentifier: record.CandidateIdentifier,
		IsExoplanet:         isExoplanet,
		Confidence:          confidence,
		Details: ml.ResultDetails{
			PlanetName:            nil,
			PlanetType:            planetType,
			RadiusEarth:           record.Radius,
			OrbitalPeriodDays:     record.Period,
			EquilibriumTempKelvin: record.EqTemp,
		},
		Note: FallbackNote,
	}
}

// fallbackPlanetType is a coarser 4-bucket scheme than the authoritative
// 7-bucket one. The divergence is inherited behavior: unifying them would
// silently change what fallback mode reports.
func fallbackPlanetType(radiusEarth float64) string {
	switch {
	case radiusEarth < 1.25:
		return "Rocky Planet"
	case radiusEarth < 2.0:
		return "Super-Earth"
	case radiusEarth < 4.0:
		return "Mini-Neptune"
	default:
		return "Gas Giant"
	}
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
