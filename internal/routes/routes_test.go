package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"disputeshield_back_end/internal/handlers"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, Deps{
		JWTSecret:     "test-secret",
		Stripe:        handlers.NewStripeHandler(handlers.StripeHandlerDeps{}),
		Webhook:       handlers.NewWebhookHandler(nil),
		Disputes:      handlers.NewDisputeHandler(nil),
		Live:          handlers.NewLiveHandler(nil),
		Evidence:      handlers.NewEvidenceHandler(nil),
		Notifications: handlers.NewNotificationHandler(nil),
	})
	return r
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAPIRequiresToken(t *testing.T) {
	r := newRouter()
	paths := []struct{ method, path string }{
		{http.MethodPost, "/api/stripe/oauth/exchange"},
		{http.MethodPost, "/api/stripe/connect"},
		{http.MethodGet, "/api/stripe/connections"},
		{http.MethodPost, "/api/stripe/disputes/fetch"},
		{http.MethodGet, "/api/disputes"},
		{http.MethodGet, "/api/disputes/live"},
		{http.MethodPost, "/api/evidence/generate"},
		{http.MethodGet, "/api/notifications"},
	}
	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(p.method, p.path, nil))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestQueryTokenRejectedOutsideBrowserRoutes(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	assert.NoError(t, err)

	r := newRouter()
	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/disputes"},
		{http.MethodGet, "/api/stripe/connections"},
		{http.MethodPost, "/api/stripe/connect"},
		{http.MethodGet, "/api/notifications"},
	}
	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(p.method, p.path+"?token="+token, nil))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/disputes", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")

	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
