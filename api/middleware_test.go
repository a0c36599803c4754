package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avaldes-dev/condoreserve/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestPrincipal_MissingIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/areas", nil)

	Principal()(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, c.IsAborted())
}

func TestPrincipal_SetsIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/areas", nil)
	c.Request.Header.Set("X-Requester-ID", "7")
	c.Request.Header.Set("X-Requester-Role", "admin")

	Principal()(c)

	assert.False(t, c.IsAborted())
	p := principalFrom(c)
	assert.Equal(t, int64(7), p.RequesterID)
	assert.True(t, p.Admin)
}

func TestAdminOnly_Forbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/reservations/11/approve", nil)
	c.Set(principalKey, domain.Principal{RequesterID: 7})

	AdminOnly()(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.True(t, c.IsAborted())
}

func TestStatusFor(t *testing.T) {
	testCases := []struct {
		err  error
		code int
	}{
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrConflict, http.StatusConflict},
		{domain.ErrInvalidState, http.StatusConflict},
		{domain.ErrDuplicatePayment, http.StatusConflict},
		{domain.ErrInvalidWindow, http.StatusUnprocessableEntity},
		{domain.ErrAreaUnavailable, http.StatusUnprocessableEntity},
		{domain.ErrInactivePriceConfig, http.StatusUnprocessableEntity},
		{domain.ErrChargeNotPayable, http.StatusUnprocessableEntity},
		{domain.ErrUnknownSession, http.StatusUnprocessableEntity},
		{domain.ErrProviderTimeout, http.StatusGatewayTimeout},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.code, statusFor(tc.err), tc.err.Error())
	}
}
