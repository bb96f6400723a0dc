package middleware

import (
	"bytes"
	"io"
	"mime"
	"net/http"
)

const maxBodyBytes = 1 << 20

// ValidateJSON rejects write requests whose body is not a non-empty JSON document.
// The body is buffered and handed on unchanged.
func ValidateJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			next.ServeHTTP(w, r)
			return
		}

		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "application/json" {
			writeMessage(w, http.StatusUnsupportedMediaType, "Content-Type header must be application/json")
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeMessage(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		if len(bytes.TrimSpace(body)) == 0 {
			writeMessage(w, http.StatusBadRequest, "Request body is empty")
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}
