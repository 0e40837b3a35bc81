package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/wardroom/messbook/internal/model"
)

// ErrorBody is the standard error envelope: a machine-readable kind plus a
// human-readable message naming the offending item or field.
type ErrorBody struct {
	Kind    model.ErrorKind `json:"kind"`
	Message string          `json:"message"`
}

// ErrorResponse wraps ErrorBody under the "error" key.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// WriteError writes a typed error response.
func WriteError(w http.ResponseWriter, statusCode int, kind model.ErrorKind, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: ErrorBody{Kind: kind, Message: message}})
}

// WriteDomainError maps a domain error onto the wire: validation and stock
// failures are client errors, unknown records are 404, everything else is a
// generic server failure.
func WriteDomainError(w http.ResponseWriter, err error) {
	kind := model.KindOf(err)
	status := http.StatusInternalServerError
	message := err.Error()
	var de *model.Error
	if errors.As(err, &de) {
		message = de.Message
	}
	switch kind {
	case model.KindValidation, model.KindItemNotFound, model.KindInsufficientStock:
		status = http.StatusBadRequest
	case model.KindRecordNotFound:
		status = http.StatusNotFound
	case model.KindStorageIO:
		// Do not leak file-system details to the caller.
		message = "storage failure"
	}
	WriteError(w, status, kind, message)
}

// WriteBadRequest writes a 400 ValidationError response.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, model.KindValidation, message)
}
