package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/okechi-dev/summarly/internal/core/errs"
)

type errorBody struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

// statusFor maps an error kind onto an HTTP status. Caller mistakes are
// 4xx; anything the caller cannot fix by changing the request is 502.
func statusFor(kind errs.Kind) int {
	switch kind {
	case errs.InvalidFormat, errs.InvalidSource, errs.EmptyInput:
		return http.StatusBadRequest
	case errs.Unauthenticated:
		return http.StatusUnauthorized
	case errs.NotFound:
		return http.StatusNotFound
	case errs.ContentTooLarge:
		return http.StatusRequestEntityTooLarge
	case errs.UnreadableDocument, errs.NoTranscriptAvailable:
		return http.StatusUnprocessableEntity
	case errs.SourceUnreachable, errs.UpstreamUnavailable, errs.GenerationIncomplete:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	kind := errs.KindOf(err)
	status := statusFor(kind)
	if status >= 500 {
		log.Printf("request failed: %v", err)
	}

	var body errorBody
	body.Error.Kind = string(kind)
	if kind == "" {
		body.Error.Kind = "internal"
	}
	body.Error.Message = err.Error()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
