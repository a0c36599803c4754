package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/avaldes-dev/condoreserve/internal/domain"
	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// Principal extracts the caller identity asserted by the upstream auth
// gateway. The core trusts these headers; issuing and validating the
// session itself is the gateway's job.
func Principal() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.GetHeader("X-Requester-ID"), 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing requester identity"})
			return
		}
		c.Set(principalKey, domain.Principal{
			RequesterID: id,
			Admin:       c.GetHeader("X-Requester-Role") == "admin",
		})
		c.Next()
	}
}

// AdminOnly gates approve/cancel style operations on the role flag.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !principalFrom(c).Admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

func principalFrom(c *gin.Context) domain.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(domain.Principal); ok {
			return p
		}
	}
	return domain.Principal{}
}

// statusFor maps the domain error taxonomy onto HTTP statuses. Conflicts
// and stale-state errors are the caller's to resolve; provider timeouts
// invite a retry.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrDuplicatePayment):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidWindow), errors.Is(err, domain.ErrAreaUnavailable),
		errors.Is(err, domain.ErrInactivePriceConfig), errors.Is(err, domain.ErrChargeNotPayable),
		errors.Is(err, domain.ErrUnknownSession):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrProviderTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
