package handler

import (
	"encoding/json"
	"net/http"

	"jalai-market/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// validate checks request structs against their validate tags.
var validate = validator.New()

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeDomainError maps a service error to a stable HTTP status code.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	de := model.AsDomainError(err)
	if de == nil {
		writeError(w, http.StatusInternalServerError, "internal server error", logger)
		return
	}

	status := http.StatusInternalServerError
	switch de.Kind {
	case model.ErrKindNotFound:
		status = http.StatusNotFound
	case model.ErrKindValidation:
		status = http.StatusBadRequest
	case model.ErrKindStateConflict, model.ErrKindStaleReference:
		status = http.StatusConflict
	case model.ErrKindEmptyCart:
		status = http.StatusUnprocessableEntity
	case model.ErrKindExternalService:
		status = http.StatusBadGateway
	}

	logger.Warn().Str("kind", de.Kind).Int("status", status).Msg(de.Message)
	writeJSON(w, status, ErrorResponse{Error: de.Message, Kind: de.Kind})
}

// decodeAndValidate decodes the request body and runs struct validation.
func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return model.ValidationError("invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return model.ValidationError("invalid request: %v", err)
	}
	return nil
}

// pathUUID parses a named path segment as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, model.ValidationError("invalid %s", name)
	}
	return id, nil
}

// queryUUID parses a required query parameter as a UUID.
func queryUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.URL.Query().Get(name))
	if err != nil {
		return uuid.Nil, model.ValidationError("invalid or missing %s", name)
	}
	return id, nil
}
