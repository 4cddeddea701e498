package ml

import (
	"math"
	"testing"
)

func TestClassifyPlanetType(t *testing.T) {
	cases := []struct {
		radius float64
		label  string
	}{
		{0, "Sub-Earth"},
		{0.49, "Sub-Earth"},
		{0.5, "Earth-sized"},
		{1.0, "Earth-sized"},
		{1.25, "Super-Earth / Mini-Neptune"},
		{1.99, "Super-Earth / Mini-Neptune"},
		{2.0, "Mini-Neptune"},
		{2.24, "Mini-Neptune"},
		{4.0, "Neptune-like"},
		{6.0, "Gas Giant"},
		{11.2, "Gas Giant"},
		{15.0, "Super-Jupiter"},
		{300, "Super-Jupiter"},
	}
	for _, tc := range cases {
		label, ok := ClassifyPlanetType(tc.radius)
		if !ok {
			t.Fatalf("expected label for radius %v", tc.radius)
		}
		if label != tc.label {
			t.Fatalf("radius %v: expected %q, got %q", tc.radius, tc.label, label)
		}
	}
}

func TestClassifyPlanetTypeAbsent(t *testing.T) {
	if _, ok := ClassifyPlanetType(math.NaN()); ok {
		t.Fatal("expected no label for absent radius")
	}
	if _, ok := ClassifyPlanetType(-1); ok {
		t.Fatal("expected no label for negative radius")
	}
}
