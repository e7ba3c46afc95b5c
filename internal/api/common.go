package api

import (
	"encoding/json"
	"net/http"
)

// jsonResponse sends a standard JSON response.
func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// errorResponse sends a standard error response.
func errorResponse(w http.ResponseWriter, status int, msg string) {
	jsonResponse(w, status, StandardResponse{
		Success: false,
		Error:   msg,
	})
}
