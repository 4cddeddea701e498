package ml

import "math"

type radiusBucket struct {
	low   float64
	high  float64
	label string
}

// Half-open [low, high) ranges in Earth radii. The combined label for
// [1.25, 2.0) is intentional: radius alone does not separate super-earths
// from mini-neptunes in that band.
var planetTypeBuckets = []radiusBucket{
	{0, 0.5, "Sub-Earth"},
	{0.5, 1.25, "Earth-sized"},
	{1.25, 2.0, "Super-Earth / Mini-Neptune"},
	{2.0, 4.0, "Mini-Neptune"},
	{4.0, 6.0, "Neptune-like"},
	{6.0, 15.0, "Gas Giant"},
	{15.0, math.Inf(1), "Super-Jupiter"},
}

// ClassifyPlanetType buckets a radius in Earth radii into one of seven size
// categories. An absent (NaN) or out-of-range radius yields no label.
func ClassifyPlanetType(radiusEarth float64) (string, bool) {
	if math.IsNaN(radiusEarth) {
		return "", false
	}
	for _, b := range planetTypeBuckets {
		if radiusEarth >= b.low && radiusEarth < b.high {
			return b.label, true
		}
	}
	return "", false
}
