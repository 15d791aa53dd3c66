package ratelimit

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/verustcode/verustcode/pkg/errors"
)

// ClientID derives the rate-limit bucket key for a request: the first
// token of X-Forwarded-For when present, else the direct peer address.
func ClientID(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if first != "" {
			return first
		}
	}
	return r.RemoteAddr
}

// Middleware returns a gin middleware enforcing l against each request's
// ClientID, responding 429 with a Retry-After header on denial.
func Middleware(l *Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := ClientID(c.Request)
		ok, retryAfter := l.Allow(id)
		if !ok {
			seconds := int(retryAfter.Seconds())
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			appErr := errors.ErrRateLimited(seconds)
			c.AbortWithStatusJSON(appErr.HTTPStatus(), gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
				"details": appErr.Details,
			})
			return
		}
		c.Next()
	}
}
