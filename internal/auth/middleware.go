package auth

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/paymentsops/ipn-ingest/internal/models"
)

// Middleware terminates unauthenticated requests with the fixed 401 contract
// body. Absent, malformed and mismatched credentials all produce the identical
// response so the endpoint is not a credential-probing oracle; the distinction
// lives only in the log line.
func Middleware(a *Authenticator, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, attempts := a.Authenticate(c.Request.Header)
		if ok {
			c.Next()
			return
		}

		args := []any{"remote_addr", c.ClientIP(), "path", c.Request.URL.Path}
		for _, at := range attempts {
			args = append(args, "scheme_"+at.Scheme, at.Outcome.String())
			if at.Identity != "" {
				args = append(args, "identity_"+at.Scheme, at.Identity)
			}
		}
		logger.Warn("authentication failed", args...)

		c.AbortWithStatusJSON(http.StatusUnauthorized, models.IPNResponse{
			MessageCode: "401",
			Message:     "Unauthorized",
		})
	}
}
