package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"exoserve/catalog"
	"exoserve/db"
	"exoserve/ml"
	"exoserve/monitoring"
)

// InferenceProvider is the self-hosted classification path.
type InferenceProvider interface {
	Classify(record ml.CandidateRecord) (ml.ClassificationResult, error)
}

// DelegatedProvider is the authoritative-endpoint path with optional fallback.
type DelegatedProvider interface {
	Classify(ctx context.Context, record ml.CandidateRecord) (ml.ClassificationResult, error)
}

// TokenVerifier resolves a bearer credential to a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

var (
	inference    InferenceProvider
	delegated    DelegatedProvider
	tokens       TokenVerifier
	catalogStore *catalog.Store
	liveHub      *monitoring.LiveHub
)

func SetInferenceProvider(p InferenceProvider) { inference = p }
func SetDelegatedProvider(p DelegatedProvider) { delegated = p }
func SetTokenVerifier(v TokenVerifier)         { tokens = v }
func SetCatalogStore(s *catalog.Store)         { catalogStore = s }
func SetLiveHub(h *monitoring.LiveHub)         { liveHub = h }

func RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("POST /predict", handleLocalPredict)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLocalPredict runs the in-process pipeline. Absent features are
// tolerated here; the imputer fills them.
func handleLocalPredict(w http.ResponseWriter, r *http.Request) {
	if inference == nil {
		writeError(w, http.StatusServiceUnavailable, "Inference service not configured", "")
		return
	}

	var record ml.CandidateRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		writeError(w, http.StatusBadRequest, "Empty or invalid JSON payload", err.Error())
		return
	}

	result, err := inference.Classify(record)
	if err != nil {
		monitoring.Classifications.WithLabelValues("local", "error").Inc()
		var loadErr *ml.ArtifactLoadError
		var mismatchErr *ml.ArtifactMismatchError
		if errors.As(err, &loadErr) || errors.As(err, &mismatchErr) {
			// Broken deployment: fail loudly, nothing to retry.
			writeError(w, http.StatusInternalServerError, "Classification pipeline unavailable", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
		return
	}

	monitoring.Classifications.WithLabelValues("local", "ok").Inc()
	broadcastResult(result)
	writeJSON(w, http.StatusOK, result)
}

func broadcastResult(result ml.ClassificationResult) {
	if liveHub == nil {
		return
	}
	liveHub.BroadcastClassification(monitoring.ClassificationEvent{
		CandidateIdentifier: result.CandidateIdentifier,
		IsExoplanet:         result.IsExoplanet,
		Confidence:          result.Confidence,
		Degraded:            result.Note != "",
	})
}

func userFrom(r *http.Request) *db.User {
	user, _ := r.Context().Value(UserKey).(*db.User)
	return user
}
