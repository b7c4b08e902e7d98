package auth

import (
	"encoding/json"
	"net/http"
	"strings"
)

// HeaderAPIKey is the request header checked for static API key authentication.
const HeaderAPIKey = "X-API-Key"

// Middleware returns HTTP middleware that accepts either the configured
// static API key or a valid JWT bearer token. With neither scheme configured
// every request passes through.
func Middleware(apiKey string, jwtManager *JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" && jwtManager == nil {
				next.ServeHTTP(w, r)
				return
			}

			if apiKey != "" && r.Header.Get(HeaderAPIKey) == apiKey {
				next.ServeHTTP(w, r)
				return
			}

			if jwtManager != nil {
				if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
					if _, err := jwtManager.ValidateToken(token); err == nil {
						next.ServeHTTP(w, r)
						return
					}
				}
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
		})
	}
}
