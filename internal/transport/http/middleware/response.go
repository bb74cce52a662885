package middleware

import (
	"encoding/json"
	"net/http"
)

// errorBody is the envelope middleware rejections are written in. Handlers
// own their richer response shapes; anything stopped before a handler runs
// answers with this minimal form.
type errorBody struct {
	Error string `json:"error"`
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: msg})
}
