package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dennisdiepolder/monti/leadqueue/internal/leadqueue"
	"github.com/dennisdiepolder/monti/leadqueue/internal/ranker"
	"github.com/dennisdiepolder/monti/leadqueue/internal/roster"
	"github.com/dennisdiepolder/monti/leadqueue/internal/scoring"
)

// errorResponse is the JSON body of every non-2xx reply
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	var verr *scoring.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, ranker.ErrInvalidSortKey),
		errors.Is(err, ranker.ErrInvalidLevel),
		errors.Is(err, roster.ErrInvalidAvailability),
		errors.Is(err, leadqueue.ErrInvalidOutcome):
		return http.StatusBadRequest
	case errors.Is(err, leadqueue.ErrDuplicateLead):
		return http.StatusConflict
	case errors.Is(err, roster.ErrUnknownAgent):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeErr replies with the status statusFor picks for err
func writeErr(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}
