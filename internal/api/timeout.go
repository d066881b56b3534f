package api

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"
)

// SpeechPath is the streaming route exempt from the write timeout.
const SpeechPath = "/api/v1/assistant/speech"

// WithWriteTimeout sets a per-request write deadline on every request except
// those under the exempt prefixes, so long audio streams are not cut off.
// The server itself must run without a WriteTimeout.
func WithWriteTimeout(next http.Handler, timeout time.Duration, exempt ...string) http.Handler {
	if timeout <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, prefix := range exempt {
			if strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
		}
		err := http.NewResponseController(w).SetWriteDeadline(time.Now().Add(timeout))
		if err != nil && !errors.Is(err, http.ErrNotSupported) {
			log.Printf("WARN: Could not set write deadline for %s: %v", r.URL.Path, err)
		}
		next.ServeHTTP(w, r)
	})
}
