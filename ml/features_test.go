package ml

import (
	"encoding/json"
	"math"
	"testing"
)

func f64(v float64) *float64 { return &v }

func TestFeatureVectorOrderAndSentinel(t *testing.T) {
	record := CandidateRecord{
		CandidateIdentifier: "KOI-1",
		Period:              f64(35.5),
		Magnitude:           f64(14.2),
	}
	vector := record.FeatureVector()
	if len(vector) != len(FeatureColumns) {
		t.Fatalf("expected %d columns, got %d", len(FeatureColumns), len(vector))
	}
	if vector[0] != 35.5 {
		t.Fatalf("koi_period position: expected 35.5, got %v", vector[0])
	}
	if vector[len(vector)-1] != 14.2 {
		t.Fatalf("koi_kepmag position: expected 14.2, got %v", vector[len(vector)-1])
	}
	for i := 1; i < len(vector)-1; i++ {
		if !math.IsNaN(vector[i]) {
			t.Fatalf("column %s: expected NaN sentinel, got %v", FeatureColumns[i], vector[i])
		}
	}
}

func TestCandidateRecordDecodeIgnoresUnknownKeys(t *testing.T) {
	payload := []byte(`{"candidateIdentifier":"K1","koi_prad":2.24,"koi_fittype":"LS","rowid":7}`)
	var record CandidateRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Radius == nil || *record.Radius != 2.24 {
		t.Fatalf("unexpected radius: %v", record.Radius)
	}
}

func TestCandidateRecordIdentifierAlias(t *testing.T) {
	payload := []byte(`{"customIdentifier":"legacy-7","koi_period":1.5}`)
	var record CandidateRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.CandidateIdentifier != "legacy-7" {
		t.Fatalf("expected alias identifier, got %q", record.CandidateIdentifier)
	}
}

func TestMissingFeatures(t *testing.T) {
	record := CandidateRecord{Radius: f64(1)}
	missing := record.MissingFeatures()
	if len(missing) != len(FeatureColumns)-1 {
		t.Fatalf("expected %d missing, got %d", len(FeatureColumns)-1, len(missing))
	}
	for _, name := range missing {
		if name == "koi_prad" {
			t.Fatal("koi_prad should not be reported missing")
		}
	}
}
