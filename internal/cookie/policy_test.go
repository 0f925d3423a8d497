package cookie

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newContext(req *http.Request) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

func cookieNames(w *httptest.ResponseRecorder) []string {
	var names []string
	for _, ck := range w.Result().Cookies() {
		names = append(names, ck.Name)
	}
	return names
}

func TestEssentialCookieWrittenWithoutConsent(t *testing.T) {
	p := NewPolicy(true, ".AklujEats.Consent")
	c, w := newContext(httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, p.HasConsent(c))
	assert.True(t, p.Write(c, &http.Cookie{Name: "session", Value: "1"}, true))
	assert.False(t, p.Write(c, &http.Cookie{Name: "remember", Value: "owner"}, false))
	assert.Equal(t, []string{"session"}, cookieNames(w))
}

func TestConsentCookieAllowsNonEssential(t *testing.T) {
	p := NewPolicy(true, ".AklujEats.Consent")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: ".AklujEats.Consent", Value: ConsentValue})
	c, w := newContext(req)

	assert.True(t, p.HasConsent(c))
	assert.True(t, p.Write(c, &http.Cookie{Name: "remember", Value: "owner"}, false))
	assert.Equal(t, []string{"remember"}, cookieNames(w))
}

func TestGrantAndWithdrawWithinRequest(t *testing.T) {
	p := NewPolicy(true, ".AklujEats.Consent")
	c, w := newContext(httptest.NewRequest(http.MethodPost, "/api/Consent", nil))

	p.Grant(c)
	assert.True(t, p.HasConsent(c))
	cookies := w.Result().Cookies()
	if assert.Len(t, cookies, 1) {
		assert.Equal(t, ConsentValue, cookies[0].Value)
		assert.Positive(t, cookies[0].MaxAge)
	}

	p.Withdraw(c)
	assert.False(t, p.HasConsent(c))
}

func TestConsentNotRequired(t *testing.T) {
	p := NewPolicy(false, ".AklujEats.Consent")
	c, _ := newContext(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, p.HasConsent(c))
}
