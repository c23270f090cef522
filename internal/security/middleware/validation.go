package middleware

import (
	"log/slog"
	"net/http"
	"strings"
)

// ValidateContentType ensures mutating requests carry a JSON body. File
// uploads and profile pictures use multipart forms and are exempt.
func ValidateContentType(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if strings.HasPrefix(r.URL.Path, "/api/files") ||
				strings.Contains(r.URL.Path, "/profile-picture") {
				if !strings.Contains(contentType, "multipart/form-data") {
					http.Error(w, "Content-Type must be multipart/form-data", http.StatusUnsupportedMediaType)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if !strings.Contains(contentType, "application/json") {
				log.Warn("invalid content type",
					slog.String("path", r.URL.Path),
					slog.String("content_type", contentType),
					slog.String("method", r.Method),
				)
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SanitizeInputs rejects requests with path traversal or markup characters
// in query parameters.
func SanitizeInputs(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			dangerousChars := []string{"<", ">", "\"", "'"}
			for key, values := range r.URL.Query() {
				for _, val := range values {
					for _, char := range dangerousChars {
						if strings.Contains(val, char) {
							log.Warn("suspicious input detected",
								slog.String("path", r.URL.Path),
								slog.String("param", key),
								slog.String("pattern", char),
							)
							http.Error(w, "Invalid input: dangerous characters detected", http.StatusBadRequest)
							return
						}
					}
				}
			}

			if strings.Contains(r.URL.Path, "..") || strings.Contains(r.URL.Path, "//") {
				log.Warn("suspicious path pattern detected",
					slog.String("path", r.URL.Path),
				)
				http.Error(w, "Invalid path", http.StatusBadRequest)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
