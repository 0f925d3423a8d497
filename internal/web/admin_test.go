package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aklujeats/aklujeats/internal/cookie"
	"github.com/aklujeats/aklujeats/internal/db/memory"
	"github.com/aklujeats/aklujeats/internal/middleware"
	"github.com/aklujeats/aklujeats/internal/mvc"
	"github.com/aklujeats/aklujeats/internal/services"
	"github.com/aklujeats/aklujeats/internal/session"
)

const (
	sessionCookie = ".AklujEats.Session"
	consentCookie = ".AklujEats.Consent"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAdminEngine(t *testing.T, limiter *middleware.RateLimiter) *gin.Engine {
	t.Helper()
	store := memory.New()
	_, err := services.NewAdminService(store).CreateAdmin(context.Background(), "manager", "correct-horse")
	require.NoError(t, err)

	policy := cookie.NewPolicy(true, consentCookie)
	manager := session.NewManager(session.NewMemoryStore(time.Minute), session.Options{
		CookieName:  sessionCookie,
		IdleTimeout: time.Minute,
		HTTPOnly:    true,
		Essential:   true,
	}, policy)
	registry := mvc.NewRegistry()

	tmpl, err := Templates()
	require.NoError(t, err)

	engine := gin.New()
	engine.SetHTMLTemplate(tmpl)
	engine.Use(manager.Middleware(), registry.Routing(), middleware.Authorize("/Admin/Login"))

	router := mvc.NewRouter(engine, registry)
	controller := NewAdminController(store, policy, limiter, "/Admin/Login")
	require.NoError(t, router.MapControllerRoute("default", "{controller=Admin}/{action=Login}/{id?}", controller))
	return engine
}

func get(engine *gin.Engine, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func postForm(engine *gin.Engine, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	var found *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			found = c
		}
	}
	return found
}

func credentials(password, returnURL string) url.Values {
	return url.Values{
		"username":  {"manager"},
		"password":  {password},
		"ReturnUrl": {returnURL},
		"remember":  {"true"},
	}
}

func TestRootRendersLogin(t *testing.T) {
	engine := newAdminEngine(t, middleware.NewRateLimiter(60, 10))

	for _, path := range []string{"/", "/Admin", "/Admin/Login"} {
		w := get(engine, path)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), "Admin sign in", path)
		assert.Nil(t, findCookie(w, sessionCookie), "an untouched session sets no cookie")
	}
}

func TestDashboardRequiresLogin(t *testing.T) {
	engine := newAdminEngine(t, middleware.NewRateLimiter(60, 10))

	w := get(engine, "/Admin/Dashboard")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/Admin/Login?ReturnUrl=%2FAdmin%2FDashboard", w.Header().Get("Location"))

	w = get(engine, "/Admin/Login?ReturnUrl=%2FAdmin%2FOrders")
	assert.Contains(t, w.Body.String(), `value="/Admin/Orders"`)
}

func TestLoginFlow(t *testing.T) {
	engine := newAdminEngine(t, middleware.NewRateLimiter(60, 10))

	w := postForm(engine, "/Admin/Login", credentials("wrong-password", ""))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password.")

	w = postForm(engine, "/Admin/Login", credentials("correct-horse", "/Admin/Orders?status=placed"))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/Admin/Orders?status=placed", w.Header().Get("Location"))
	sid := findCookie(w, sessionCookie)
	require.NotNil(t, sid)
	assert.True(t, sid.HttpOnly)
	assert.Nil(t, findCookie(w, RememberCookieName), "remember-me needs consent")

	w = get(engine, "/Admin/Dashboard", sid)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Dashboard")
	assert.Contains(t, w.Body.String(), "manager")

	w = get(engine, "/Admin/Orders?status=placed", sid)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No orders yet.")

	w = get(engine, "/Admin/Login", sid)
	assert.Equal(t, http.StatusFound, w.Code, "signed-in admins skip the form")

	w = postForm(engine, "/Admin/Logout", nil, sid)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/Admin/Login", w.Header().Get("Location"))

	w = get(engine, "/Admin/Dashboard", sid)
	assert.Equal(t, http.StatusFound, w.Code, "the session ends on logout")
}

func TestLoginRememberMeWithConsent(t *testing.T) {
	engine := newAdminEngine(t, middleware.NewRateLimiter(60, 10))
	consent := &http.Cookie{Name: consentCookie, Value: cookie.ConsentValue}

	w := postForm(engine, "/Admin/Login", credentials("correct-horse", "//evil.example/phish"), consent)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/Admin/Dashboard", w.Header().Get("Location"), "off-site return urls are ignored")

	remember := findCookie(w, RememberCookieName)
	require.NotNil(t, remember)
	assert.Equal(t, "manager", remember.Value)

	w = get(engine, "/Admin/Login", remember)
	assert.Contains(t, w.Body.String(), `value="manager"`)
}

func TestLoginRenewsSession(t *testing.T) {
	engine := newAdminEngine(t, middleware.NewRateLimiter(60, 10))

	w := postForm(engine, "/Admin/Login", credentials("correct-horse", ""))
	require.Equal(t, http.StatusFound, w.Code)
	first := findCookie(w, sessionCookie)
	require.NotNil(t, first)

	w = postForm(engine, "/Admin/Login", credentials("correct-horse", ""), first)
	require.Equal(t, http.StatusFound, w.Code)
	second := findCookie(w, sessionCookie)
	require.NotNil(t, second)
	assert.NotEqual(t, first.Value, second.Value)

	w = get(engine, "/Admin/Dashboard", first)
	assert.Equal(t, http.StatusFound, w.Code, "the previous session id is dropped")

	w = get(engine, "/Admin/Dashboard", second)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginThrottled(t *testing.T) {
	engine := newAdminEngine(t, middleware.NewRateLimiter(1, 1))

	w := postForm(engine, "/Admin/Login", credentials("wrong-password", ""))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postForm(engine, "/Admin/Login", credentials("correct-horse", ""))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many sign-in attempts")
}

func TestIsLocalURL(t *testing.T) {
	tests := map[string]bool{
		"":                     false,
		"/Admin/Orders":        true,
		"/":                    true,
		"//evil.example":       false,
		"/\\evil.example":      false,
		"https://evil.example": false,
		"Admin/Orders":         false,
		"/a\r\nSet-Cookie:x":   false,
	}
	for input, want := range tests {
		assert.Equal(t, want, isLocalURL(input), input)
	}
}

func TestFormatRupees(t *testing.T) {
	assert.Equal(t, "₹180.00", FormatRupees(18000))
	assert.Equal(t, "₹0.05", FormatRupees(5))
	assert.Equal(t, "-₹1.50", FormatRupees(-150))
}
