package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/cashbook/internal/adapter/http/dto"
	"github.com/iho/cashbook/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   kind,
		Message: message,
	})
}

// writeDomainError maps err to its status and writes {error, message,
// invoice_id?, fields?}. Server-side failures are logged.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapDomainError(err)
	resp := dto.ErrorResponse{
		Error:   domain.Kind(err),
		Message: err.Error(),
	}

	var allocErr *domain.AllocationError
	if errors.As(err, &allocErr) {
		resp.InvoiceID = allocErr.InvoiceID
	}

	var verr *dto.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}

	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		resp.Message = "storage is unavailable, retry later"
	}

	writeJSON(w, status, resp)
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch domain.Kind(err) {
	case "InvalidAmount", "SameAccount", "ValidationFailed":
		return http.StatusBadRequest
	case "AccountNotFound", "InvoiceNotFound", "NotFound":
		return http.StatusNotFound
	case "OverAllocation", "InvoiceAlreadySettled", "ConcurrencyConflict", "AccountArchived":
		return http.StatusConflict
	case "AllocationSumMismatch":
		return http.StatusUnprocessableEntity
	default:
		return http.StatusServiceUnavailable
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseWindow reads the from/to query parameters. Both accept RFC 3339
// timestamps or plain dates; a plain "to" date includes that whole day.
func parseWindow(r *http.Request) (domain.TransactionFilter, error) {
	var filter domain.TransactionFilter

	from, err := parseTimeQuery(r, "from", false)
	if err != nil {
		return filter, err
	}

	to, err := parseTimeQuery(r, "to", true)
	if err != nil {
		return filter, err
	}

	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return filter, fmt.Errorf("%w: from must be before to", domain.ErrValidationFailed)
	}

	filter.From, filter.To = from, to

	return filter, nil
}

func parseTimeQuery(r *http.Request, key string, endOfDay bool) (time.Time, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return time.Time{}, nil
	}

	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t.UTC(), nil
	}

	d, err := time.Parse(time.DateOnly, val)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be RFC 3339 or YYYY-MM-DD", domain.ErrValidationFailed, key)
	}

	if endOfDay {
		d = d.AddDate(0, 0, 1)
	}

	return d, nil
}
