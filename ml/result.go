package ml

import "math"

// ClassificationResult is the canonical response shape both serving paths
// produce. Note is only set on degraded (fallback) answers.
type ClassificationResult struct {
	CandidateIdentifier string        `json:"candidateIdentifier"`
	IsExoplanet         bool          `json:"isExoplanet"`
	Confidence          float64       `json:"confidence"`
	Details             ResultDetails `json:"details"`
	Note                string        `json:"note,omitempty"`
}

type ResultDetails struct {
	PlanetName            *string  `json:"planetName"`
	PlanetType            *string  `json:"planetType"`
	RadiusEarth           *float64 `json:"radiusEarth"`
	OrbitalPeriodDays     *float64 `json:"orbitalPeriodDays"`
	EquilibriumTempKelvin *float64 `json:"equilibriumTempKelvin"`
}

// RoundConfidence rounds to the 6 decimals the response contract fixes.
func RoundConfidence(p float64) float64 {
	return math.Round(p*1e6) / 1e6
}
