package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/auth"
	"github.com/cvazquezfgc/planificacio-renovacio-via/pkg/response"
)

// SubjectKey holds the verified token subject on the gin context
const SubjectKey = "subject"

// RequireToken rejects requests without a valid bearer token
func RequireToken(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			response.Unauthorized(c, "Missing bearer token")
			return
		}

		subject, err := auth.Verify(secret, strings.TrimSpace(raw))
		if err != nil {
			_ = c.Error(err)
			response.Unauthorized(c, "Invalid token")
			return
		}

		c.Set(SubjectKey, subject)
		c.Next()
	}
}
