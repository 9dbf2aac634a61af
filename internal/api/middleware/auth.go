package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"voice-type/internal/api/errors"
)

const bearerPrefix = "bearer "

// BearerAuth rejects requests whose Authorization header does not carry the
// configured token. Both values are hashed first so the comparison takes the
// same time whatever the length of the presented token.
func BearerAuth(token string) gin.HandlerFunc {
	expected := sha256.Sum256([]byte(token))

	return func(c *gin.Context) {
		presented, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			rejectUnauthorized(c, "Not authenticated")
			return
		}

		actual := sha256.Sum256([]byte(presented))
		if subtle.ConstantTimeCompare(expected[:], actual[:]) != 1 {
			rejectUnauthorized(c, "Invalid token")
			return
		}

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

func rejectUnauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", "Bearer")
	HandleError(c, errors.NewUnauthorizedError(detail))
}
