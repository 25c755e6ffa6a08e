package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const ctxUserIDKey = "userID"

// requireAuth extracts the bearer token, verifies it as an access token and
// stores the subject in the request context. Any failure yields the same
// generic 401 regardless of cause.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c)
			return
		}

		subject, err := s.auth.VerifyAccessToken(token)
		if err != nil {
			s.logger.Debug(c.Request.Context(), "access token rejected", "error", err)
			abortUnauthorized(c)
			return
		}

		c.Set(ctxUserIDKey, subject)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

func abortUnauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
}

// userID returns the authenticated subject set by requireAuth.
func userID(c *gin.Context) string {
	return c.GetString(ctxUserIDKey)
}
