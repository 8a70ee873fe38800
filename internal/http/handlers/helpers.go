package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"jobboard/internal/authz"
	"jobboard/internal/common"
	"jobboard/internal/http/middleware"
)

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return common.NewError(common.CodeValidation, "request body is required", nil)
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return common.NewError(common.CodeValidation, "request body too large", err)
		case errors.Is(err, io.EOF):
			return common.NewError(common.CodeValidation, "request body is required", err)
		default:
			return common.NewError(common.CodeValidation, "invalid JSON body", err)
		}
	}
	return nil
}

func actorFrom(r *http.Request) (authz.Actor, error) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		return authz.Actor{}, common.NewError(common.CodeUnauthorized, "authentication required", nil)
	}
	return actor, nil
}

// optionalActor returns nil for anonymous requests.
func optionalActor(r *http.Request) *authz.Actor {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		return nil
	}
	return &actor
}

func idParam(r *http.Request, name string) (common.UUID, error) {
	id, err := common.ParseUUID(chi.URLParam(r, name))
	if err != nil {
		return "", common.NewValidationError("invalid id", map[string]string{name: name + " must be a valid id"})
	}
	return id, nil
}

func intQuery(r *http.Request, name string) int {
	value, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(name)))
	if err != nil {
		return 0
	}
	return value
}

func boolQuery(r *http.Request, name string) (*bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, common.NewValidationError("invalid query", map[string]string{name: name + " must be true or false"})
	}
	return &value, nil
}

func listQuery(r *http.Request, name string) []string {
	var out []string
	for _, raw := range r.URL.Query()[name] {
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

func validationRequired(field string) error {
	return common.NewValidationError("invalid request", map[string]string{field: field + " is required"})
}
