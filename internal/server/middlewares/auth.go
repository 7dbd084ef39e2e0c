package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	srvErrors "github.com/campi/campi/pkg/errors"
)

// SubjectKey holds the token subject in the gin context.
const SubjectKey = "subject"

// Authenticator accepts requests carrying "Authorization: Bearer <jwt>" signed
// with secret (HS256). Expiry and not-before claims are enforced.
func Authenticator(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authenticate(c.GetHeader("Authorization"), secret)
		if err != nil {
			zap.S().Named("auth").Debugw("request rejected", "path", c.Request.URL.Path, "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(SubjectKey, claims.Subject)
		c.Next()
	}
}

func authenticate(header string, secret []byte) (*jwt.RegisteredClaims, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return nil, srvErrors.NewUnauthorizedError("missing bearer token")
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, srvErrors.NewUnauthorizedError(err.Error())
	}

	return claims, nil
}
