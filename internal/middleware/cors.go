package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// CORS configures cross-origin access from the comma-separated origins list.
func CORS(origins string) func(http.Handler) http.Handler {
	allowed := []string{"*"}
	if origins != "" && origins != "*" {
		allowed = allowed[:0]
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				allowed = append(allowed, o)
			}
		}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Locale"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}
