package mvc

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParsePattern(t *testing.T) {
	p, err := ParsePattern("{controller=Admin}/{action=Login}/{id?}")
	require.NoError(t, err)
	require.Len(t, p.Segments, 3)

	assert.Equal(t, Segment{Name: "controller", Default: "Admin"}, p.Segments[0])
	assert.Equal(t, Segment{Name: "action", Default: "Login"}, p.Segments[1])
	assert.Equal(t, Segment{Name: "id", Optional: true}, p.Segments[2])
	assert.Equal(t, map[string]string{"controller": "Admin", "action": "Login"}, p.Defaults())
}

func TestParsePatternErrors(t *testing.T) {
	for _, raw := range []string{
		"",
		"{controller}/{action",
		"{controller=}/{action}",
		"{controller}/{action}/{}",
		"{controller}/{action}/x{id}",
		"{controller}/{controller}/{action}",
		"{controller}/{id?}",
		"{controller}//{action}",
	} {
		_, err := ParsePattern(raw)
		assert.Error(t, err, raw)
	}
}

func TestExpand(t *testing.T) {
	p, err := ParsePattern("{controller=Admin}/{action=Login}/{id?}")
	require.NoError(t, err)

	assert.Equal(t, []string{"/Admin/Login/:id", "/Admin/Login", "/Admin", "/"}, p.Expand("Admin", "Login"))
	assert.Equal(t, []string{"/Admin/Dashboard/:id", "/Admin/Dashboard"}, p.Expand("Admin", "Dashboard"))
	assert.Equal(t, []string{"/Reports/Login/:id", "/Reports/Login", "/Reports"}, p.Expand("Reports", "Login"))

	withLiteral, err := ParsePattern("shop/{controller=Home}/{action=Index}")
	require.NoError(t, err)
	assert.Equal(t, []string{"/shop/Home/Index", "/shop/Home", "/shop"}, withLiteral.Expand("Home", "Index"))
}

func TestConvertTemplate(t *testing.T) {
	tests := []struct {
		template string
		want     string
	}{
		{"api/[controller]", "/api/Orders"},
		{"api/[controller]/{id}", "/api/Orders/:id"},
		{"/api/[controller]/{id:guid}/events", "/api/Orders/:id/events"},
		{"api/[controller]/[action]", "/api/Orders/Track"},
		{"files/{*path}", "/files/*path"},
		{"", "/"},
	}
	for _, tt := range tests {
		got, err := ConvertTemplate(tt.template, "Orders", "Track")
		require.NoError(t, err, tt.template)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []string{"api/[area]/x", "api/{id", "api/{*rest}/more", "api/{id?}"} {
		_, err := ConvertTemplate(bad, "Orders", "Track")
		assert.Error(t, err, bad)
	}
}

type stubController struct{}

func (stubController) Name() string { return "Admin" }

func (stubController) Actions() []Action {
	return []Action{
		{Name: "Login", Handler: writeEndpoint},
		{Name: "Login", Method: http.MethodPost, Handler: writeEndpoint},
		{Name: "Dashboard", Policy: PolicyRequireAdmin, Handler: writeEndpoint},
	}
}

type stubAPI struct{}

func (stubAPI) Name() string { return "Orders" }

func (stubAPI) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Template: "api/[controller]/{id}", Action: "Get", Handler: writeEndpoint},
	}
}

func writeEndpoint(c *gin.Context) {
	ep, ok := EndpointFrom(c)
	if !ok {
		c.String(http.StatusInternalServerError, "no endpoint")
		return
	}
	c.String(http.StatusOK, "%s %s %s %s", ep.Kind, ep.DisplayName(), ep.Policy, RouteValue(c, "action"))
}

func newTestEngine(t *testing.T) (*gin.Engine, *Registry) {
	t.Helper()
	engine := gin.New()
	registry := NewRegistry()
	engine.Use(registry.Routing())

	router := NewRouter(engine, registry)
	require.NoError(t, router.MapControllerRoute("default", "{controller=Admin}/{action=Login}/{id?}", stubController{}))
	require.NoError(t, router.MapControllers(stubAPI{}))
	return engine, registry
}

func TestRoutingResolvesEndpoints(t *testing.T) {
	engine, registry := newTestEngine(t)

	tests := []struct {
		method, path, want string
	}{
		{http.MethodGet, "/", "mvc Admin.Login  Login"},
		{http.MethodPost, "/Admin", "mvc Admin.Login  Login"},
		{http.MethodGet, "/Admin/Login/7", "mvc Admin.Login  Login"},
		{http.MethodGet, "/Admin/Dashboard", "mvc Admin.Dashboard RequireAdmin Dashboard"},
		{http.MethodGet, "/api/Orders/42", "api Orders.Get  "},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, http.StatusOK, w.Code, tt.path)
		assert.Equal(t, tt.want, w.Body.String(), tt.path)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/Admin/Missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Len(t, registry.Endpoints(), 4+4+2+1)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Add(&Endpoint{Controller: "A", Action: "B", Method: "GET", Path: "/x"}))
	assert.Error(t, registry.Add(&Endpoint{Controller: "C", Action: "D", Method: "GET", Path: "/x"}))
}
