package app

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/tripkas/tripkas/internal/config"
	"github.com/tripkas/tripkas/internal/rest"
	"github.com/tripkas/tripkas/pkg/plan"
	"github.com/tripkas/tripkas/pkg/user"
	log "github.com/sirupsen/logrus"
)

// SetupMiddleware wires all HTTP middlewares for the application. CORS wraps the router itself so
// preflight requests are answered before route matching.
func SetupMiddleware(r *mux.Router, deps *Dependencies, cfg config.Application) http.Handler {
	r.Use(deps.Metrics.Middleware)

	// Propagate X-User-Id header into context for downstream services
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			userIdHeader := req.Header.Get("X-User-Id")
			ctx := req.Context()

			if userIdHeader != "" {
				u, err := deps.UserService.GetUserByUid(ctx, userIdHeader)
				if err != nil {
					if errors.Is(err, user.ErrUserNotFound) {
						log.Debugf("user not found: %s", userIdHeader)
						rest.WriteError(w, rest.Forbidden("user not found"))
						return
					}
					log.Errorf("failed to get user: %v", err)
					rest.WriteError(w, err)
					return
				}
				log.Tracef("user found: %s", u.Uid)
				ctx = user.WithAuth(ctx, u, deps.UserService.Authorize(u))
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})

	return cors.New(cors.Options{
		AllowedOrigins:   cfg.Cors.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type", "X-User-Id", plan.TokenHeader},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}).Handler(r)
}
