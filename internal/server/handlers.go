package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/HeorhiiKortunov/CoreTask/internal/services/validation"
)

// maxBodyBytes caps request bodies read by the handlers.
const maxBodyBytes = 1 << 20

// api holds the dependencies shared by every handler.
type api struct {
	services  Services
	validator *validation.Validator
}

// decode reads the request body, validates it against schema and unmarshals
// it into dst.
func (a *api) decode(w http.ResponseWriter, r *http.Request, schema string, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", validation.ErrMalformedBody, err)
	}
	return a.validator.Decode(schema, body, dst)
}

// pathID parses the {id} route parameter.
func pathID(r *http.Request) (int64, error) {
	return parseID("id", chi.URLParam(r, "id"))
}

// queryID parses an optional numeric query parameter. It returns nil when the
// parameter is absent.
func queryID(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := parseID(name, raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseID(field, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, validation.FieldErrors{field: "must be a positive integer"}
	}
	return id, nil
}
