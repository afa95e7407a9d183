package middlewares

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"board-client/models"
	"board-client/validation"
)

// maxPostBody caps the size of a post payload accepted by the proxy.
const maxPostBody = 1 << 20

// ValidatePostPayload checks create and update bodies before they are
// forwarded. It expects paths with the /api prefix already stripped.
func ValidatePostPayload(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var check func([]byte) error
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/posts":
			check = checkCreate
		case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/posts/"):
			check = checkUpdate
		default:
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPostBody))
		_ = r.Body.Close()
		if err != nil {
			HttpError(w, "Invalid request body", http.StatusBadRequest, err)
			return
		}

		if err := check(body); err != nil {
			var verr *validation.ValidationError
			if errors.As(err, &verr) {
				ValidationFailed(w, verr)
				return
			}
			HttpError(w, "Invalid JSON payload", http.StatusBadRequest, err)
			return
		}

		// Hand the consumed body back to the proxy.
		r.Body = io.NopCloser(bytes.NewReader(body))
		r.ContentLength = int64(len(body))
		next.ServeHTTP(w, r)
	})
}

func checkCreate(body []byte) error {
	var data models.PostCreateData
	if err := json.Unmarshal(body, &data); err != nil {
		return err
	}
	return validation.ValidatePostCreate(data)
}

func checkUpdate(body []byte) error {
	var data models.PostUpdateData
	if err := json.Unmarshal(body, &data); err != nil {
		return err
	}
	return validation.ValidatePostUpdate(data)
}
