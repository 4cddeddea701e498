package ml

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func writeTestBundle(t *testing.T, dir string, intercept float64) {
	t.Helper()
	n := len(FeatureColumns)
	writeJSON(t, filepath.Join(dir, "imputer.json"), Imputer{Medians: make([]float64, n)})
	writeJSON(t, filepath.Join(dir, "scaler.json"), Scaler{Means: make([]float64, n), Stds: ones(n)})
	writeJSON(t, filepath.Join(dir, "model.json"), LogisticModel{Weights: make([]float64, n), Intercept: intercept})
	writeJSON(t, filepath.Join(dir, "feature_columns.json"), FeatureColumns)
}

func writeJSON(t *testing.T, path string, v interface{}) {
	t.Helper()
	payload, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatal(err)
	}
}

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

func TestLoadBundleMissingFileIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeTestBundle(t, dir, 0)
	if err := os.Remove(filepath.Join(dir, "scaler.json")); err != nil {
		t.Fatal(err)
	}

	_, err := LoadBundle(dir)
	var loadErr *ArtifactLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected ArtifactLoadError, got %v", err)
	}
}

func TestLoadBundleColumnDrift(t *testing.T) {
	dir := t.TempDir()
	writeTestBundle(t, dir, 0)

	permuted := append([]string{}, FeatureColumns...)
	permuted[0], permuted[1] = permuted[1], permuted[0]
	writeJSON(t, filepath.Join(dir, "feature_columns.json"), permuted)

	if _, err := LoadBundle(dir); err == nil {
		t.Fatal("expected error for permuted column list")
	}
}

func TestLoadBundleColumnCountMismatch(t *testing.T) {
	dir := t.TempDir()
	writeTestBundle(t, dir, 0)
	writeJSON(t, filepath.Join(dir, "feature_columns.json"), FeatureColumns[:14])

	_, err := LoadBundle(dir)
	var mismatch *ArtifactMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected ArtifactMismatchError, got %v", err)
	}
}

func TestArtifactProviderLoadsOnce(t *testing.T) {
	dir := t.TempDir()
	writeTestBundle(t, dir, 0)
	provider := NewArtifactProvider(dir)

	var wg sync.WaitGroup
	bundles := make([]*Bundle, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bundle, err := provider.Bundle()
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			bundles[i] = bundle
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(bundles); i++ {
		if bundles[i] != bundles[0] {
			t.Fatal("concurrent first-callers got different bundle handles")
		}
	}
}
