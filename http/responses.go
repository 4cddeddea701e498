package http

import (
	"encoding/json"
	"net/http"
)

// errorBody 统一错误响应结构,不暴露堆栈
type errorBody struct {
	Message string              `json:"message"`
	Error   string              `json:"error,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, detail string) {
	writeJSON(w, status, errorBody{Message: message, Error: detail})
}

func writeValidationError(w http.ResponseWriter, errors map[string][]string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Message: "Validation error", Errors: errors})
}
