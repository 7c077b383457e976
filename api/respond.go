package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rpupo63/pustok-backend/errs"
	"github.com/rs/zerolog"
)

type Responder struct {
	logger     zerolog.Logger
	webhookURL string
}

func NewResponder(logger zerolog.Logger, webhookURL string) Responder {
	return Responder{logger: logger, webhookURL: webhookURL}
}

func (r Responder) WriteJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	// Marshal the data first to check size and handle errors
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	const maxResponseSize = 10 * 1024 * 1024 // 10MB
	if len(jsonData) > maxResponseSize {
		r.logger.Error().
			Int("responseSize", len(jsonData)).
			Int("maxSize", maxResponseSize).
			Msg("response too large, truncating")

		truncatedJSON, err := json.Marshal(map[string]any{
			"error":        "Response too large",
			"message":      "The requested data exceeds the maximum response size",
			"maxSizeMB":    maxResponseSize / (1024 * 1024),
			"actualSizeMB": len(jsonData) / (1024 * 1024),
		})
		if err != nil {
			r.logger.Error().Err(err).Msg("error marshaling truncated response")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		w.Write(truncatedJSON)
		return
	}

	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// WriteJSONStatus writes data with a non-200 status code.
func (r Responder) WriteJSONStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	r.WriteJSON(w, data)
}

// SendErrorNotification posts errMsg to the configured error webhook, if any.
func (r Responder) SendErrorNotification(errMsg string) {
	if r.webhookURL == "" {
		return
	}

	jsonData, err := json.Marshal(map[string]string{
		"errorMessage": errMsg,
		"service":      "pustok-backend",
		"time":         time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		r.logger.Error().Err(err).Msg("Error marshaling error notification request")
		return
	}

	client := http.Client{Timeout: 5 * time.Second}
	resp, err := client.Post(r.webhookURL, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		r.logger.Error().Err(err).Msg("Error sending error notification")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		r.logger.Error().Msgf("Error notification service returned non-2xx status: %d", resp.StatusCode)
	}
}

func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr

	// Unclassified and infrastructure errors are logged in full and answered generically.
	if !errors.As(err, &apiErr) || errs.IsStoreError(err) {
		status := http.StatusInternalServerError
		if apiErr != nil {
			status = apiErr.StatusCode
		}

		// Constraint violations stay visible to the caller, without the cause chain.
		if status < http.StatusInternalServerError {
			r.logger.Warn().Str("cause", apiErr.GetFullError()).Msg(apiErr.Error())
			r.WriteJSONStatus(w, status, ErrorResponse{Error: apiErr.Error(), Status: "error", Details: apiErr.Details})
			return
		}

		if apiErr != nil {
			r.logger.Error().Str("cause", apiErr.GetFullError()).Msg(apiErr.Error())
		} else {
			r.logger.Error().Msg(err.Error())
		}
		go r.SendErrorNotification(err.Error())

		r.WriteJSONStatus(w, status, map[string]any{
			"error":   "Internal Server Error",
			"message": "An unexpected error occurred",
			"status":  "error",
		})
		return
	}

	response := ErrorResponse{
		Error:   apiErr.Error(),
		Status:  "error",
		Field:   apiErr.Field,
		Details: apiErr.Details,
	}
	if apiErr.Cause != nil {
		response.Cause = apiErr.GetFullError()
	}

	r.WriteJSONStatus(w, apiErr.StatusCode, response)
}
