package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"deptchat_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-signing-key")

func protectedEcho(t *testing.T) (http.Handler, *SessionUser) {
	t.Helper()
	var captured SessionUser
	auth := &AuthMiddleware{Secret: testSecret}
	handler := auth.Protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := CurrentUser(r.Context())
		require.True(t, ok, "expected session user on context")
		captured = user
		w.WriteHeader(http.StatusOK)
	}))
	return handler, &captured
}

func TestProtect_ValidCookieToken(t *testing.T) {
	handler, captured := protectedEcho(t)

	token, err := GenerateToken(testSecret, "s1", models.KindStudent, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: token})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, SessionUser{ID: "s1", Kind: models.KindStudent}, *captured)
}

func TestProtect_ValidBearerToken(t *testing.T) {
	handler, captured := protectedEcho(t)

	token, err := GenerateToken(testSecret, "l1", models.KindLecturer, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, SessionUser{ID: "l1", Kind: models.KindLecturer}, *captured)
}

func TestProtect_MissingToken(t *testing.T) {
	handler, _ := protectedEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestProtect_WrongSigningKey(t *testing.T) {
	handler, _ := protectedEcho(t)

	token, err := GenerateToken([]byte("some-other-key"), "s1", models.KindStudent, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: token})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestProtect_ExpiredToken(t *testing.T) {
	handler, _ := protectedEcho(t)

	token, err := GenerateToken(testSecret, "s1", models.KindStudent, -time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: token})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestProtect_UnknownRole(t *testing.T) {
	handler, _ := protectedEcho(t)

	token, err := GenerateToken(testSecret, "s1", "Admin", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: token})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCurrentUser_AbsentFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := CurrentUser(req.Context())
	assert.False(t, ok)
}
