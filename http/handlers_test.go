package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"exoserve/ml"
)

type fakeInference struct {
	result ml.ClassificationResult
	err    error
}

func (f *fakeInference) Classify(record ml.CandidateRecord) (ml.ClassificationResult, error) {
	if f.err != nil {
		return ml.ClassificationResult{}, f.err
	}
	result := f.result
	if result.CandidateIdentifier == "" {
		result.CandidateIdentifier = record.CandidateIdentifier
	}
	return result, nil
}

func TestHandleHealth(t *testing.T) {
	mux := http.NewServeMux()
	RegisterHandlers(mux)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload["status"] != "ok" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestHandleLocalPredict(t *testing.T) {
	mux := http.NewServeMux()
	RegisterHandlers(mux)
	SetInferenceProvider(&fakeInference{result: ml.ClassificationResult{IsExoplanet: true, Confidence: 0.9}})
	defer SetInferenceProvider(nil)

	body := `{"candidateIdentifier":"KOI-1","koi_prad":2.24}`
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var result ml.ClassificationResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if result.CandidateIdentifier != "KOI-1" || !result.IsExoplanet {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestHandleLocalPredictInvalidBody(t *testing.T) {
	mux := http.NewServeMux()
	RegisterHandlers(mux)
	SetInferenceProvider(&fakeInference{})
	defer SetInferenceProvider(nil)

	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHandleLocalPredictBrokenArtifacts(t *testing.T) {
	mux := http.NewServeMux()
	RegisterHandlers(mux)
	SetInferenceProvider(&fakeInference{err: &ml.ArtifactLoadError{Path: "artifacts/model.json"}})
	defer SetInferenceProvider(nil)

	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(`{"candidateIdentifier":"x"}`))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Classification pipeline unavailable") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}
