package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"predial/internal/core"
	"predial/internal/services"
	"predial/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

// respondServiceError maps domain errors to HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, services.ErrTenantNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrEmptySequential),
		errors.Is(err, core.ErrInvalidYear),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidInstallments),
		errors.Is(err, core.ErrNegativeArea),
		errors.Is(err, core.ErrInvalidPercentage),
		errors.Is(err, services.ErrSequentialCovered):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// parseYearParam reads the "year" query parameter, defaulting to the current
// year. Malformed values coerce to the default rather than failing the
// request.
func parseYearParam(r *http.Request) int {
	year := time.Now().Year()
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil && y >= 1900 && y <= 2200 {
			year = y
		}
	}
	return year
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
