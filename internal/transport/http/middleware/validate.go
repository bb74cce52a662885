package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/learnza/learnza-api/internal/rules"
)

// validationEnvelope is the 422 response body for rule failures.
type validationEnvelope struct {
	Status  bool                `json:"status"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// ValidateBody decodes the JSON request body, evaluates it against the rule
// set and rejects the request with 422 and the full per-field diagnosis if
// any constraint fails. The body is restored so downstream handlers can
// decode it into their typed request structs.
func ValidateBody(set *rules.Set) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				writeJSONError(w, http.StatusBadRequest, "could not read request body")
				return
			}
			r.Body.Close()

			record := map[string]any{}
			if len(bytes.TrimSpace(body)) > 0 {
				if err := json.Unmarshal(body, &record); err != nil {
					writeJSONError(w, http.StatusBadRequest, "invalid request body")
					return
				}
			}

			if errs := set.Validate(record); len(errs) > 0 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnprocessableEntity)
				_ = json.NewEncoder(w).Encode(validationEnvelope{
					Status:  false,
					Message: "validation failed",
					Errors:  errs,
				})
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}
