package correlation

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

const (
	Header        = "X-Correlation-ID"
	RequestHeader = "X-Request-ID"
	maxIDLength   = 128
)

var validID = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Middleware stores a correlation id in the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if !Valid(id) {
			id = r.Header.Get(RequestHeader)
		}
		if !Valid(id) {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
	})
}

// Valid reports whether id is safe to propagate in headers and logs.
func Valid(id string) bool {
	return id != "" && len(id) <= maxIDLength && validID.MatchString(id)
}
