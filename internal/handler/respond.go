package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeBody decodes a JSON request body into dst. On failure it writes the
// error response itself and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("payload_too_large", "request body too large", ""))
	case errors.Is(err, io.EOF):
		badRequest(w, "request body is required")
	default:
		badRequest(w, fmt.Sprintf("invalid request body: %v", err))
	}
	return false
}

// pathID binds the {id} path parameter as a UUID. On failure it writes the
// error response itself and returns false.
func pathID(w http.ResponseWriter, r *http.Request) (openapi_types.UUID, bool) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		badRequest(w, fmt.Sprintf("invalid id: %v", err))
		return openapi_types.UUID{}, false
	}
	return id, true
}

// queryInt binds an optional integer query parameter. A missing parameter
// yields nil. On failure it writes the error response itself and returns false.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (*int, bool) {
	var v *int
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		badRequest(w, fmt.Sprintf("invalid %s: %v", name, err))
		return nil, false
	}
	return v, true
}
