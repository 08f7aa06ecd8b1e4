package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/roombook/internal/domain"
)

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

func errorBody(code, message, field string) errorResponse {
	return errorResponse{Error: errorDetail{Code: code, Message: message, Field: field}}
}

// badRequest answers 422 for input rejected before reaching the service layer
// (malformed body, bad path or query parameter).
func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnprocessableEntity, errorBody("validation_error", message, ""))
}

// writeError maps a service error onto a status code and error envelope.
// Unclassified errors are logged and reported as 500 without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ie *domain.IntervalError
	switch {
	case errors.As(err, &ie):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("invalid_interval", ie.Field+" "+ie.Reason, ie.Field))
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("validation_error", unwrapMessage(err, domain.ErrValidation), ""))
	case errors.Is(err, domain.ErrRoomNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not_found", domain.ErrRoomNotFound.Error(), ""))
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not_found", "resource not found", ""))
	case errors.Is(err, domain.ErrRoomInactive):
		writeJSON(w, http.StatusBadRequest, errorBody("room_inactive", domain.ErrRoomInactive.Error(), ""))
	case errors.Is(err, domain.ErrOverlap):
		writeJSON(w, http.StatusConflict, errorBody("overlap", domain.ErrOverlap.Error(), ""))
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("conflict", unwrapMessage(err, domain.ErrConflict), ""))
	default:
		s.log.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal_error", "internal server error", ""))
	}
}

// unwrapMessage extracts the human-readable detail that follows a sentinel.
// e.g. "service.RoomService.Create: validation error: beds must be at least 1"
// → "beds must be at least 1". Without detail the sentinel text is returned.
func unwrapMessage(err, sentinel error) string {
	msg := err.Error()
	marker := sentinel.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return sentinel.Error()
}
