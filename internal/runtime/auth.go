package runtime

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// claims is the minimal bearer-token payload this runtime trusts: a uid
// that gates which orders a request is allowed to act on (cancel/reduce/
// move all check uid ownership inside the core itself — this middleware
// only establishes who is asking).
type claims struct {
	UID uint64 `json:"uid"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates a bearer JWT signed with secret and stores the
// authenticated uid in the gin context under "uid".
func AuthMiddleware(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return key, nil
		})
		if err != nil || !parsed.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("uid", parsed.Claims.(*claims).UID)
		c.Next()
	}
}
