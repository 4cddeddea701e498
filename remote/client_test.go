package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"exoserve/ml"
)

func f64(v float64) *float64 { return &v }

func testRecord() ml.CandidateRecord {
	return ml.CandidateRecord{
		CandidateIdentifier: "KOI-test",
		Period:              f64(35.5),
		Depth:               f64(1550.2),
		Radius:              f64(2.24),
		SNR:                 f64(12.7),
		EqTemp:              f64(793),
	}
}

func TestClassifySuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sekrit" {
			t.Errorf("unexpected auth header: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidateIdentifier":"KOI-test","isExoplanet":true,"confidence":0.912345,"details":{"planetType":"Mini-Neptune"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sekrit", time.Second, nil)
	result, err := client.Classify(context.Background(), testRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsExoplanet || result.Confidence != 0.912345 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestClassifyTimeout(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer func() {
		close(block)
		server.Close()
	}()

	client := NewClient(server.URL, "", 50*time.Millisecond, nil)
	start := time.Now()
	_, err := client.Classify(context.Background(), testRecord())
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("call did not unblock promptly: %v", elapsed)
	}

	callErr, ok := err.(*CallError)
	if !ok {
		t.Fatalf("expected *CallError, got %v", err)
	}
	if callErr.Kind != KindTimeout {
		t.Fatalf("expected timeout kind, got %s", callErr.Kind)
	}
}

func TestClassifyUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url, "", time.Second, nil)
	_, err := client.Classify(context.Background(), testRecord())
	callErr, ok := err.(*CallError)
	if !ok || callErr.Kind != KindUnavailable {
		t.Fatalf("expected unavailable kind, got %v", err)
	}
}

func TestClassifyProtocolError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"message":"model is rebuilding"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second, nil)
	_, err := client.Classify(context.Background(), testRecord())
	callErr, ok := err.(*CallError)
	if !ok || callErr.Kind != KindProtocol {
		t.Fatalf("expected protocol kind, got %v", err)
	}
	if callErr.Status != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", callErr.Status)
	}
	if callErr.Message != "model is rebuilding" {
		t.Fatalf("expected extracted message, got %q", callErr.Message)
	}
}

func TestClassifyInvalidResponse(t *testing.T) {
	for _, body := range []string{`[1,2,3]`, `not json at all`, ``} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))
		client := NewClient(server.URL, "", time.Second, nil)
		_, err := client.Classify(context.Background(), testRecord())
		server.Close()

		callErr, ok := err.(*CallError)
		if !ok || callErr.Kind != KindInvalidResponse {
			t.Fatalf("body %q: expected invalid_response kind, got %v", body, err)
		}
	}
}

func TestClassifyBackfillsIdentifier(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"isExoplanet":true,"confidence":0.8,"details":{}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second, nil)
	result, err := client.Classify(context.Background(), testRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.CandidateIdentifier != "KOI-test" {
		t.Fatalf("expected backfilled identifier, got %q", result.CandidateIdentifier)
	}
}
