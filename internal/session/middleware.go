// Package session extracts the caller's identity from a bearer token.
// Identity provisioning happens outside this system; a missing or invalid
// token is a supported state (local-only operation), not a 401.
package session

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	syncdomain "remindkit/internal/sync/domain"
)

const contextKey = "session"

// Middleware parses an optional Authorization bearer token into a Session.
// Requests without a valid token proceed signed-out.
func Middleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := syncdomain.Anonymous()

		authHeader := c.GetHeader("Authorization")
		if parts := strings.Split(authHeader, " "); len(parts) == 2 && parts[0] == "Bearer" {
			if userID, err := parseSubject(parts[1], jwtSecret); err == nil {
				sess = syncdomain.SignedIn(userID)
			}
		}

		c.Set(contextKey, sess)
		c.Next()
	}
}

// FromContext returns the request's session; signed-out when absent
func FromContext(c *gin.Context) syncdomain.Session {
	if v, ok := c.Get(contextKey); ok {
		if sess, ok := v.(syncdomain.Session); ok {
			return sess
		}
	}
	return syncdomain.Anonymous()
}

func parseSubject(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return sub, nil
}
