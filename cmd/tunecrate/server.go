package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tunecrate/internal/app/activity"
	"tunecrate/internal/app/catalog"
	"tunecrate/internal/app/collections"
	"tunecrate/internal/app/social"
	"tunecrate/internal/app/users"
	"tunecrate/internal/auth"
	"tunecrate/internal/httpapi"
	"tunecrate/internal/store"
)

func newHTTPHandler(cfg Config, dataStore *store.Store, logger zerolog.Logger) http.Handler {
	userSvc := users.New(dataStore)
	collectionSvc := collections.New(dataStore)
	catalogSvc := catalog.New(dataStore)
	activitySvc := activity.New(dataStore)
	socialSvc := social.New(dataStore)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	server := httpapi.New(userSvc, collectionSvc, catalogSvc, activitySvc, socialSvc, tokens, logger)
	return withCORS(cfg.AllowedOrigins, server.Routes())
}

func withCORS(allowedOrigins []string, next http.Handler) http.Handler {
	originAllowed := func(origin string) bool {
		if len(allowedOrigins) == 0 || origin == "" {
			return false
		}
		for _, o := range allowedOrigins {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "3600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// newServer applies sane timeouts so slow clients cannot pin connections.
func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
