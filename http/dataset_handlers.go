package http

import (
	"net/http"
	"strings"

	"exoserve/catalog"
	"exoserve/monitoring"
)

func RegisterDatasetHandlers(mux *http.ServeMux) {
	mux.Handle("GET /api/datasets/kepler", requireAuth(http.HandlerFunc(handleDataset("kepler"))))
	mux.Handle("GET /api/datasets/tess", requireAuth(http.HandlerFunc(handleDataset("tess"))))
	mux.Handle("GET /api/datasets/search", requireAuth(http.HandlerFunc(handleDatasetSearch)))
}

func RegisterMonitoringHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/ws/live", handleLiveWS)
	mux.Handle("GET /metrics", monitoring.MetricsHandler())
}

func handleDataset(dataset string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalogStore == nil {
			writeError(w, http.StatusServiceUnavailable, "Catalog not configured", "")
			return
		}

		page, limit, ok := parsePagination(r, 12, 50)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid parameters", "")
			return
		}

		result, err := catalogStore.List(dataset, page, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Error retrieving dataset", err.Error())
			return
		}

		info, _ := catalog.Info(dataset)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"data": result.Data,
			"pagination": map[string]interface{}{
				"page":        result.Page,
				"limit":       result.Limit,
				"total_items": result.TotalItems,
				"total_pages": result.TotalPages,
				"has_next":    result.Page < result.TotalPages,
				"has_prev":    result.Page > 1,
			},
			"dataset_info": info,
		})
	}
}

func handleDatasetSearch(w http.ResponseWriter, r *http.Request) {
	if catalogStore == nil {
		writeError(w, http.StatusServiceUnavailable, "Catalog not configured", "")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "Query parameter q is required", "")
		return
	}

	results, err := catalogStore.Search(query, 20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Search failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"results": results,
		"count":   len(results),
	})
}

func handleLiveWS(w http.ResponseWriter, r *http.Request) {
	if liveHub == nil {
		writeError(w, http.StatusServiceUnavailable, "Live feed not configured", "")
		return
	}
	liveHub.ServeWS(w, r)
}
