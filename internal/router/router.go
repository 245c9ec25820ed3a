package router

import (
	"log"
	"net/http"
	"strings"

	"email-insight/backend/internal/auth"
	"email-insight/backend/internal/handlers"
	"email-insight/backend/internal/middleware"
)

type Router struct {
	api     *handlers.API
	auth    *auth.Service
	limiter *middleware.RateLimiter
	origin  string
}

func New(api *handlers.API, authService *auth.Service, limiter *middleware.RateLimiter, origin string) *Router {
	return &Router{api: api, auth: authService, limiter: limiter, origin: origin}
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"error processing the request"}`))
		}
	}()

	if middleware.HandleCORS(w, r, rt.origin) {
		return
	}
	middleware.SecurityHeaders(w)

	path := strings.TrimSuffix(r.URL.Path, "/")
	if path == "" {
		path = "/"
	}

	if rt.auth != nil && requiresAuth(path) {
		principal, err := middleware.Authenticate(r, rt.auth)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		if rt.limiter != nil && !rt.limiter.Allow("client:"+principal.Client) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}`))
			return
		}
		r = r.WithContext(auth.WithPrincipal(r.Context(), principal))
	} else if rt.limiter != nil {
		if !rt.limiter.Allow(middleware.ClientKey(r)) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}`))
			return
		}
	}

	switch path {
	case "/":
		if r.Method == http.MethodGet {
			rt.api.Root(w, r)
			return
		}
	case "/health":
		if r.Method == http.MethodGet {
			rt.api.Health(w, r)
			return
		}
	case "/generate_reply":
		if r.Method == http.MethodPost {
			rt.api.GenerateReply(w, r)
			return
		}
	case "/api/v1/auth/token":
		if r.Method == http.MethodPost {
			rt.api.IssueToken(w, r)
			return
		}
	case "/api/v1/analyze/batch":
		if r.Method == http.MethodPost {
			rt.api.BatchAnalyze(w, r)
			return
		}
	case "/api/v1/usage":
		if r.Method == http.MethodGet {
			rt.api.GetUsage(w, r)
			return
		}
	case "/api/v1/health/model":
		if r.Method == http.MethodGet {
			rt.api.ModelHealth(w, r)
			return
		}
	case "/api/v1/ws":
		if r.Method == http.MethodGet {
			rt.api.StreamAnalyses(w, r)
			return
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"error":"not found"}`))
}

func requiresAuth(path string) bool {
	if !strings.HasPrefix(path, "/api/v1/") {
		return false
	}
	return path != "/api/v1/auth/token"
}
