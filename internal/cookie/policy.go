package cookie

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aklujeats/aklujeats/internal/logger"
)

// ConsentValue is stored in the consent cookie once the visitor agrees
const ConsentValue = "yes"

const (
	consentContextKey = "aklujeats.consent"
	consentLifetime   = 365 * 24 * time.Hour
)

// Policy decides which cookies may be written. Until the visitor consents,
// only essential cookies are sent.
type Policy struct {
	consentRequired bool
	consentName     string
}

// NewPolicy creates a cookie policy
func NewPolicy(consentRequired bool, consentCookieName string) *Policy {
	return &Policy{consentRequired: consentRequired, consentName: consentCookieName}
}

// ConsentCookieName returns the name of the consent cookie
func (p *Policy) ConsentCookieName() string {
	return p.consentName
}

// HasConsent reports whether non-essential cookies may be written for this request
func (p *Policy) HasConsent(c *gin.Context) bool {
	if !p.consentRequired {
		return true
	}
	if v, ok := c.Get(consentContextKey); ok {
		return v.(bool)
	}
	value, err := c.Cookie(p.consentName)
	return err == nil && value == ConsentValue
}

// Write sets the cookie if it is essential or consent has been given and
// reports whether it was written
func (p *Policy) Write(c *gin.Context, cookie *http.Cookie, essential bool) bool {
	if !essential && !p.HasConsent(c) {
		logger.Debug("Dropped non-essential cookie %s: no consent", cookie.Name)
		return false
	}
	http.SetCookie(c.Writer, cookie)
	return true
}

// Grant records consent for this and later requests
func (p *Policy) Grant(c *gin.Context) {
	c.Set(consentContextKey, true)
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     p.consentName,
		Value:    ConsentValue,
		Path:     "/",
		MaxAge:   int(consentLifetime.Seconds()),
		Secure:   c.Request.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// Withdraw removes consent. Non-essential cookies already set are left to expire.
func (p *Policy) Withdraw(c *gin.Context) {
	c.Set(consentContextKey, false)
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     p.consentName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		SameSite: http.SameSiteLaxMode,
	})
}
