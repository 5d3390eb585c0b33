// internal/utils/cookie.go
package utils

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieManager writes the httpOnly access token cookie.
type CookieManager struct {
	Name   string
	Domain string
	Secure bool
}

func NewCookieManager(name, domain string, secure bool) *CookieManager {
	return &CookieManager{Name: name, Domain: domain, Secure: secure}
}

func (m *CookieManager) SetAccessToken(c *gin.Context, token string, exp time.Time) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.Name, token, maxAgeFrom(exp), "/", m.Domain, m.Secure, true)
}

func (m *CookieManager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.Name, "", -1, "/", m.Domain, m.Secure, true)
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
