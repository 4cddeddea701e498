package http

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"exoserve/db"
	"exoserve/ml"
	"exoserve/remote"
)

func RegisterPredictionHandlers(mux *http.ServeMux) {
	mux.Handle("POST /api/predictions/predict", requireAuth(http.HandlerFunc(handleDelegatedPredict)))
	mux.Handle("GET /api/predictions/history", requireAuth(http.HandlerFunc(handlePredictionHistory)))
	mux.Handle("GET /api/predictions/history/{id}", requireAuth(http.HandlerFunc(handlePredictionDetail)))
	mux.Handle("GET /api/predictions/stats", requireAuth(http.HandlerFunc(handlePredictionStats)))
}

// validateCandidate enforces the delegated-path schema: identifier plus all
// 15 features present. The self-hosted path is the tolerant one.
func validateCandidate(record *ml.CandidateRecord) map[string][]string {
	fieldErrors := map[string][]string{}
	if record.CandidateIdentifier == "" {
		fieldErrors["candidateIdentifier"] = []string{"Missing data for required field."}
	}
	for _, name := range record.MissingFeatures() {
		fieldErrors[name] = []string{"Missing data for required field."}
	}
	if len(fieldErrors) == 0 {
		return nil
	}
	return fieldErrors
}

func handleDelegatedPredict(w http.ResponseWriter, r *http.Request) {
	if delegated == nil {
		writeError(w, http.StatusServiceUnavailable, "Prediction service not configured", "")
		return
	}
	user := userFrom(r)

	var record ml.CandidateRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		writeError(w, http.StatusBadRequest, "No data provided", "")
		return
	}
	if fieldErrors := validateCandidate(&record); fieldErrors != nil {
		writeValidationError(w, fieldErrors)
		return
	}

	result, err := delegated.Classify(r.Context(), record)
	if err != nil {
		writeRemoteError(w, err)
		return
	}

	broadcastResult(result)

	requestJSON, _ := json.Marshal(record)
	responseJSON, _ := json.Marshal(result)
	saved, err := db.SavePrediction(user.ID, requestJSON, responseJSON)
	if err != nil {
		zap.L().Error("failed to save prediction", zap.Error(err), zap.String("user", user.ID))
		// The caller still gets the answer; only history is lossy.
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message":    "Prediction completed but failed to save to history",
			"prediction": result,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":       "Prediction completed successfully",
		"prediction":    result,
		"prediction_id": saved.ID,
	})
}

// writeRemoteError maps the failure taxonomy onto distinct statuses so
// operational tooling can tell slow, down and misbehaving apart.
func writeRemoteError(w http.ResponseWriter, err error) {
	var callErr *remote.CallError
	if !errors.As(err, &callErr) {
		writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
		return
	}

	switch callErr.Kind {
	case remote.KindTimeout:
		writeError(w, http.StatusRequestTimeout, "External API request timed out", callErr.Message)
	case remote.KindUnavailable:
		writeError(w, http.StatusServiceUnavailable, "Failed to connect to prediction service", callErr.Message)
	case remote.KindProtocol:
		writeError(w, http.StatusBadGateway, "External API returned an error",
			"HTTP "+strconv.Itoa(callErr.Status)+": "+callErr.Message)
	case remote.KindInvalidResponse:
		writeError(w, http.StatusBadGateway, "Invalid response from prediction service", callErr.Message)
	default:
		writeError(w, http.StatusInternalServerError, "Unexpected error calling external API", callErr.Message)
	}
}

func handlePredictionHistory(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	page, limit, ok := parsePagination(r, 10, 50)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid pagination parameters", "")
		return
	}

	records, err := db.ListPredictionsByUser(user.ID, limit, (page-1)*limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
		return
	}
	total, err := db.CountPredictionsByUser(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"predictions": records,
		"pagination": map[string]int{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": (total + limit - 1) / limit,
		},
	})
}

func handlePredictionDetail(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	record, err := db.FindPredictionByID(r.PathValue("id"))
	if err == db.ErrNotFound {
		writeError(w, http.StatusNotFound, "Prediction not found", "")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
		return
	}
	if record.UserID != user.ID {
		writeError(w, http.StatusForbidden, "Access denied", "")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handlePredictionStats summarizes the owner's recent history (last 100).
func handlePredictionStats(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	total, err := db.CountPredictionsByUser(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
		return
	}
	recent, err := db.ListPredictionsByUser(user.ID, 100, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
		return
	}

	exoplanets := 0
	confidenceSum := 0.0
	planetTypes := map[string]int{}
	for _, record := range recent {
		var result ml.ClassificationResult
		if err := json.Unmarshal(record.Response, &result); err != nil {
			continue
		}
		if result.IsExoplanet {
			exoplanets++
		}
		confidenceSum += result.Confidence
		if result.Details.PlanetType != nil {
			planetTypes[*result.Details.PlanetType]++
		}
	}

	avgConfidence := 0.0
	if len(recent) > 0 {
		avgConfidence = confidenceSum / float64(len(recent))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_predictions":        total,
		"confirmed_exoplanets":     exoplanets,
		"average_confidence":       math.Round(avgConfidence*1000) / 1000,
		"planet_type_distribution": planetTypes,
	})
}

func parsePagination(r *http.Request, defaultLimit, maxLimit int) (page, limit int, ok bool) {
	page, limit = 1, defaultLimit
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return 0, 0, false
		}
		page = parsed
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return 0, 0, false
		}
		limit = parsed
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit, true
}
