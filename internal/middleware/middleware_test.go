package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Saloni021-kashyap/Tripkart/internal/auth"
	"github.com/Saloni021-kashyap/Tripkart/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/logger"
)

func newTestLogger(t *testing.T) logger.Logger {
	t.Helper()
	log, err := logger.InitLogger("slog", "test", "test", logger.WithLevel(logger.ErrorLevel))
	if err != nil {
		t.Fatalf("init test logger: %v", err)
	}
	return log
}

func setupRouter(t *testing.T) (*auth.TokenManager, http.Handler) {
	t.Helper()
	tokens := auth.NewTokenManager("secret", time.Hour)

	r := ginext.New("test")
	r.Use(RequestID(), RequestLogger(newTestLogger(t)), Recovery(newTestLogger(t)), Authenticate(tokens))

	whoami := func(c *ginext.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			c.JSON(http.StatusOK, ginext.H{"user_id": ""})
			return
		}
		c.JSON(http.StatusOK, ginext.H{"user_id": id.UserID})
	}
	r.GET("/public", whoami)
	r.GET("/user", RequireUser(), whoami)
	r.GET("/admin", RequireAdmin(), whoami)
	r.GET("/panic", func(*ginext.Context) { panic("boom") })

	return tokens, r
}

func do(t *testing.T, h http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	tokens, r := setupRouter(t)

	userToken, err := tokens.Issue(&domain.User{ID: "u1", Role: domain.RoleUser})
	require.NoError(t, err)
	adminToken, err := tokens.Issue(&domain.User{ID: "a1", Role: domain.RoleAdmin})
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		token  string
		status int
		userID string
	}{
		{"anonymous public", "/public", "", http.StatusOK, ""},
		{"user public", "/public", userToken, http.StatusOK, "u1"},
		{"garbage token", "/public", "garbage", http.StatusUnauthorized, ""},
		{"anonymous user route", "/user", "", http.StatusUnauthorized, ""},
		{"user route", "/user", userToken, http.StatusOK, "u1"},
		{"user on admin route", "/admin", userToken, http.StatusForbidden, ""},
		{"admin route", "/admin", adminToken, http.StatusOK, "a1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, tt.path, tt.token)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				var body map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.userID, body["user_id"])
			}
		})
	}
}

func TestAuthenticate_NonBearerScheme(t *testing.T) {
	_, r := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestID(t *testing.T) {
	_, r := setupRouter(t)

	w := do(t, r, "/public", "")
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set(requestIDHeader, "8c5e4f0e-4a9b-4b8e-9d7a-2f1c3b6d5e4a")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "8c5e4f0e-4a9b-4b8e-9d7a-2f1c3b6d5e4a", w.Header().Get(requestIDHeader))
}

func TestRecovery(t *testing.T) {
	_, r := setupRouter(t)

	w := do(t, r, "/panic", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}
