package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/codementor-ai/codementor/internal/ai/gateway"
	"github.com/codementor-ai/codementor/internal/shared/database"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// writeAIError maps a classified AI failure to its HTTP status analog.
func writeAIError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var gerr *gateway.Error
	if errors.As(err, &gerr) {
		switch gerr.Kind {
		case gateway.KindRateLimit:
			status = http.StatusTooManyRequests
		case gateway.KindTimeout:
			status = http.StatusRequestTimeout
		}
	}

	writeError(w, status, err.Error())
}

// writeStoreError maps persistence failures: missing rows become 404.
func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, database.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func urlParamInt64(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
