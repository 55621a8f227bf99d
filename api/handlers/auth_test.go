package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetsight/compressor-telemetry/internal/auth"
	"github.com/fleetsight/compressor-telemetry/pkg/config"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *auth.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := auth.HashPassword("pass123")
	require.NoError(t, err)

	svc := auth.NewService("test-secret", time.Hour)
	h := NewAuthHandler([]config.UserConfig{{Username: "operator", PasswordHash: hash}}, svc)

	r := gin.New()
	r.POST("/auth/login", h.Login)
	return r, svc
}

func postLogin(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestLogin_Success(t *testing.T) {
	r, svc := newAuthRouter(t)

	w := postLogin(r, `{"username":"operator","password":"pass123"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "operator", resp.Username)
	assert.Equal(t, 3600, resp.ExpiresIn)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Username)
	assert.Equal(t, 1, claims.UserID)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "auth_token", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLogin_WrongPassword(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := postLogin(r, `{"username":"operator","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_UnknownUser(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := postLogin(r, `{"username":"ghost","password":"pass123"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_MalformedBody(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := postLogin(r, `{"username":"operator"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
