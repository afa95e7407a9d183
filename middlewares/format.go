package middlewares

import (
	"encoding/json"
	"log"
	"net/http"

	"board-client/validation"
)

// errorBody is the payload of every error the proxy answers itself.
type errorBody struct {
	Error   string   `json:"error"`
	Status  int      `json:"status"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding proxy response: %v", err)
	}
}

// HttpError answers with an errorBody. A nil err is an expected refusal and
// is logged without a cause.
func HttpError(w http.ResponseWriter, message string, status int, err error) {
	if err != nil {
		log.Printf("HTTP %d - %s: %v", status, message, err)
	} else {
		log.Printf("HTTP %d - %s", status, message)
	}
	writeJSON(w, status, errorBody{Error: message, Status: status})
}

// ValidationFailed rejects a post payload, listing each failed rule.
func ValidationFailed(w http.ResponseWriter, verr *validation.ValidationError) {
	writeJSON(w, http.StatusBadRequest, errorBody{
		Error:   "Validation failed",
		Status:  http.StatusBadRequest,
		Details: verr.Errors,
	})
}
