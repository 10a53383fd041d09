package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/tripkas/tripkas/internal/config"
	"github.com/tripkas/tripkas/internal/metrics"
	"github.com/tripkas/tripkas/internal/rest"
	"github.com/tripkas/tripkas/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (http.Handler, user.User) {
	repo := user.NewStubUserRepository()
	id, err := repo.CreateUser(context.Background(), user.User{Uid: "uid-ayu", Username: "ayu"})
	require.NoError(t, err)
	u, err := repo.GetUser(context.Background(), id)
	require.NoError(t, err)

	deps := &Dependencies{
		UserService: user.NewUserService(repo, []string{"uid-ayu"}),
		Metrics:     metrics.New(),
	}
	cfg := config.Defaults()

	r := mux.NewRouter()
	handler := SetupMiddleware(r, deps, cfg)
	r.HandleFunc("/api/probe", func(w http.ResponseWriter, req *http.Request) {
		auth, err := user.CurrentAuth(req.Context())
		if err != nil {
			rest.WriteError(w, err)
			return
		}
		rest.WriteJSON(w, http.StatusOK, auth)
	}).Methods("GET")
	return handler, u
}

func TestSetupMiddleware(t *testing.T) {
	t.Run("should resolve the caller from the user id header", func(t *testing.T) {
		// given
		handler, u := setupRouter(t)
		req := httptest.NewRequest(http.MethodGet, "/api/probe", nil)
		req.Header.Set("X-User-Id", "uid-ayu")
		rr := httptest.NewRecorder()

		// when
		handler.ServeHTTP(rr, req)

		// then
		require.Equal(t, http.StatusOK, rr.Code)
		var auth user.AuthContext
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&auth))
		assert.Equal(t, u.Id, auth.UserId)
		assert.True(t, auth.IsEnvAdmin)
	})

	t.Run("should reject unknown users", func(t *testing.T) {
		handler, _ := setupRouter(t)
		req := httptest.NewRequest(http.MethodGet, "/api/probe", nil)
		req.Header.Set("X-User-Id", "uid-unknown")
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.JSONEq(t, `{"error":"user not found"}`, rr.Body.String())
	})

	t.Run("should pass anonymous requests through", func(t *testing.T) {
		handler, _ := setupRouter(t)
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/probe", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("should answer preflight requests from allowed origins", func(t *testing.T) {
		handler, _ := setupRouter(t)
		tests := []struct {
			origin  string
			allowed string
		}{
			{"http://localhost:3000", "http://localhost:3000"},
			{"https://evil.example", ""},
		}
		for _, tt := range tests {
			t.Run(tt.origin, func(t *testing.T) {
				req := httptest.NewRequest(http.MethodOptions, "/api/probe", nil)
				req.Header.Set("Origin", tt.origin)
				req.Header.Set("Access-Control-Request-Method", http.MethodGet)
				req.Header.Set("Access-Control-Request-Headers", "X-User-Id")
				rr := httptest.NewRecorder()

				handler.ServeHTTP(rr, req)

				assert.Equal(t, tt.allowed, rr.Header().Get("Access-Control-Allow-Origin"))
			})
		}
	})
}
