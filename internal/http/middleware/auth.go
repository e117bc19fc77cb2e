package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"klaimportal/internal/domain"
)

const authUserKey = "auth_user"

// Auth parses the bearer token when present and puts the authenticated user
// on the context. It never aborts; route groups decide what is required.
func Auth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.Next()
			return
		}
		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			c.Next()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.Next()
			return
		}

		rc := domain.RequestContext{}
		if v, ok := claims["user_id"].(float64); ok {
			rc.UserID = int64(v)
		}
		if v, ok := claims["name"].(string); ok {
			rc.Name = v
		}
		if v, ok := claims["role"].(string); ok {
			rc.Role = v
		}
		if rc.UserID > 0 {
			c.Set(authUserKey, rc)
		}
		c.Next()
	}
}

// RequireAuth aborts unauthenticated requests.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetAuthUser(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login diperlukan"})
			return
		}
		c.Next()
	}
}

// RequireAdmin aborts requests whose user is not an admin.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := GetAuthUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login diperlukan"})
			return
		}
		if !rc.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "akses khusus admin"})
			return
		}
		c.Next()
	}
}

// GetAuthUser returns the authenticated user from the gin context.
func GetAuthUser(c *gin.Context) (domain.RequestContext, bool) {
	if v, ok := c.Get(authUserKey); ok {
		if rc, ok := v.(domain.RequestContext); ok {
			return rc, true
		}
	}
	return domain.RequestContext{}, false
}
