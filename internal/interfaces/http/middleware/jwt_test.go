package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/einvoice/internal/infrastructure/auth"
	"github.com/erp/einvoice/internal/infrastructure/config"
	"github.com/erp/einvoice/internal/infrastructure/logger"
	"github.com/erp/einvoice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Enabled: true,
		Secret:  "test-secret-key-at-least-32-chars",
		Issuer:  "test-issuer",
	})
}

func newJWTRouter(t *testing.T, svc *auth.JWTService) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), JWTAuthMiddleware(svc, zaptest.NewLogger(t)))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/api/v1/einvoice/session", func(c *gin.Context) {
		claims := GetJWTClaims(c)
		require.NotNil(t, claims)
		c.JSON(http.StatusOK, gin.H{
			"subject":     GetJWTSubject(c),
			"ctx_subject": logger.Subject(c.Request.Context()),
		})
	})
	return router
}

func decodeErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	svc := newTestJWTService()
	token, err := svc.GenerateToken("billing-service", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/einvoice/session", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	w := httptest.NewRecorder()
	newJWTRouter(t, svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"subject":"billing-service","ctx_subject":"billing-service"}`, w.Body.String())
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	svc := newTestJWTService()
	other := auth.NewJWTService(config.JWTConfig{Secret: "a-completely-different-secret-key", Issuer: "test-issuer"})
	forged, err := other.GenerateToken("billing-service", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", dto.ErrCodeTokenInvalid},
		{"wrong scheme", "Basic dXNlcjpwYXNz", dto.ErrCodeTokenInvalid},
		{"empty token", "Bearer ", dto.ErrCodeTokenInvalid},
		{"forged token", BearerPrefix + forged, dto.ErrCodeTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/einvoice/session", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			w := httptest.NewRecorder()
			newJWTRouter(t, svc).ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.code, decodeErrorCode(t, w))
		})
	}
}

func TestJWTAuthMiddleware_ExpiredToken(t *testing.T) {
	svc := newTestJWTService()
	token, err := svc.GenerateToken("billing-service", -time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/einvoice/session", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	w := httptest.NewRecorder()
	newJWTRouter(t, svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenExpired, decodeErrorCode(t, w))
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	w := httptest.NewRecorder()
	newJWTRouter(t, newTestJWTService()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
