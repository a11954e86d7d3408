// Package respond writes the {success, message} envelope every workflow
// endpoint answers with. Domain failures are HTTP 200 with success=false,
// matching what the web clients expect; non-200 is reserved for transport
// problems.
package respond

import (
	"encoding/json"
	"net/http"
)

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Success writes {"success":true,"message":...}.
func Success(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, map[string]any{"success": true, "message": message})
}

// Data writes {"success":true, key: v}.
func Data(w http.ResponseWriter, key string, v any) {
	JSON(w, http.StatusOK, map[string]any{"success": true, key: v})
}

// Fields writes a success envelope with extra top-level fields.
func Fields(w http.ResponseWriter, fields map[string]any) {
	out := map[string]any{"success": true}
	for k, v := range fields {
		out[k] = v
	}
	JSON(w, http.StatusOK, out)
}

// Failure writes {"success":false,"message":...} with HTTP 200.
func Failure(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, map[string]any{"success": false, "message": message})
}

// BadRequest writes a transport-level error for malformed requests.
func BadRequest(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": message})
}
