package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"deptchat_server/models"

	"github.com/golang-jwt/jwt/v5"
)

const tokenCookieName = "jwt"

type contextKey string

const sessionUserKey contextKey = "session-user"

// SessionUser is the authenticated caller attached to the request context:
// the id and account kind every protected handler needs.
type SessionUser struct {
	ID   string
	Kind string
}

// SessionClaims is the signed session token payload issued at login.
type SessionClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates the session token on protected routes. The token
// is read from the jwt cookie (browser clients) or a bearer header.
type AuthMiddleware struct {
	Secret []byte
}

// Protect rejects requests without a valid session token and attaches the
// resolved SessionUser to the request context.
func (a *AuthMiddleware) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := extractToken(r)
		if err != nil {
			http.Error(w, `{"error": "Unauthorized - No token provided"}`, http.StatusUnauthorized)
			return
		}

		claims := &SessionClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return a.Secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			http.Error(w, `{"error": "Unauthorized - Invalid token"}`, http.StatusUnauthorized)
			return
		}
		if claims.UserID == "" || (claims.Role != models.KindStudent && claims.Role != models.KindLecturer) {
			http.Error(w, `{"error": "Unauthorized - Invalid token"}`, http.StatusUnauthorized)
			return
		}

		user := SessionUser{ID: claims.UserID, Kind: claims.Role}
		ctx := context.WithValue(r.Context(), sessionUserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CurrentUser returns the authenticated caller placed on the context by
// Protect.
func CurrentUser(ctx context.Context) (SessionUser, bool) {
	user, ok := ctx.Value(sessionUserKey).(SessionUser)
	return user, ok
}

// GenerateToken signs a session token for a user. Token issuance lives in
// the auth flow; this helper keeps the claim shape in one place.
func GenerateToken(secret []byte, userID, role string, ttl time.Duration) (string, error) {
	claims := SessionClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func extractToken(r *http.Request) (string, error) {
	if cookie, err := r.Cookie(tokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer "), nil
	}
	return "", errors.New("no token provided")
}
