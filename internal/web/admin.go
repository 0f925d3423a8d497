package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aklujeats/aklujeats/internal/cookie"
	"github.com/aklujeats/aklujeats/internal/db"
	"github.com/aklujeats/aklujeats/internal/logger"
	"github.com/aklujeats/aklujeats/internal/metrics"
	"github.com/aklujeats/aklujeats/internal/middleware"
	"github.com/aklujeats/aklujeats/internal/models"
	"github.com/aklujeats/aklujeats/internal/mvc"
	"github.com/aklujeats/aklujeats/internal/services"
	"github.com/aklujeats/aklujeats/internal/session"
	"github.com/aklujeats/aklujeats/internal/shared"
)

const (
	// RememberCookieName holds the last username when the admin asks to be remembered
	RememberCookieName = ".AklujEats.RememberMe"
	rememberLifetime   = 30 * 24 * time.Hour

	dashboardPath = "/Admin/Dashboard"
)

// AdminController serves the back-office pages
type AdminController struct {
	admins    *services.AdminService
	dashboard *services.DashboardService
	orders    *services.OrderService
	cookies   *cookie.Policy
	limiter   *middleware.RateLimiter
	loginPath string
}

// NewAdminController creates the admin controller. Sign-in attempts are
// throttled per client IP by limiter.
func NewAdminController(database db.Database, cookies *cookie.Policy, limiter *middleware.RateLimiter, loginPath string) *AdminController {
	return &AdminController{
		admins:    services.NewAdminService(database),
		dashboard: services.NewDashboardService(database),
		orders:    services.NewOrderService(database),
		cookies:   cookies,
		limiter:   limiter,
		loginPath: loginPath,
	}
}

// Name implements mvc.Controller
func (a *AdminController) Name() string { return "Admin" }

// Actions implements mvc.Controller
func (a *AdminController) Actions() []mvc.Action {
	return []mvc.Action{
		{Name: "Login", Handler: a.loginForm},
		{Name: "Login", Method: http.MethodPost, Handler: a.login},
		{Name: "Logout", Method: http.MethodPost, Handler: a.logout},
		{Name: "Dashboard", Policy: mvc.PolicyRequireAdmin, Handler: a.showDashboard},
		{Name: "Orders", Policy: mvc.PolicyRequireAdmin, Handler: a.showOrders},
	}
}

func (a *AdminController) view(c *gin.Context, title string, data gin.H) gin.H {
	data["Title"] = title
	data["AdminName"] = session.Default(c).Get(session.KeyAdminName)
	return data
}

func (a *AdminController) renderLogin(c *gin.Context, status int, username, returnURL, message string) {
	remembered, _ := c.Cookie(RememberCookieName)
	if username == "" {
		username = remembered
	}
	c.HTML(status, "login.tmpl", a.view(c, "Sign in", gin.H{
		"LoginPath":  a.loginPath,
		"ReturnURL":  returnURL,
		"Username":   username,
		"Remembered": remembered != "",
		"Error":      message,
	}))
}

// loginForm handles GET /Admin/Login
func (a *AdminController) loginForm(c *gin.Context) {
	if session.Default(c).Get(session.KeyAdminID) != "" {
		c.Redirect(http.StatusFound, dashboardPath)
		return
	}
	a.renderLogin(c, http.StatusOK, "", c.Query("ReturnUrl"), "")
}

// login handles POST /Admin/Login
func (a *AdminController) login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	returnURL := c.PostForm("ReturnUrl")

	if !a.limiter.Allow(c.ClientIP()) {
		metrics.RecordAdminLogin("throttled")
		logger.Warning("Sign-in throttled for %s", c.ClientIP())
		a.renderLogin(c, http.StatusTooManyRequests, username, returnURL, "Too many sign-in attempts. Try again in a minute.")
		return
	}

	admin, err := a.admins.Authenticate(c.Request.Context(), username, password)
	if err != nil {
		if errors.Is(err, shared.ErrUnauthorized) {
			metrics.RecordAdminLogin("failure")
			a.renderLogin(c, http.StatusUnauthorized, username, returnURL, "Invalid username or password.")
			return
		}
		logger.Error("Failed to authenticate %s: %v", username, err)
		a.renderLogin(c, http.StatusInternalServerError, username, returnURL, "Sign-in is unavailable right now.")
		return
	}

	sess := session.Default(c)
	sess.Renew()
	sess.Set(session.KeyAdminID, admin.ID)
	sess.Set(session.KeyAdminName, admin.Username)
	metrics.RecordAdminLogin("success")
	logger.Info("Admin %s signed in", admin.Username)

	if c.PostForm("remember") == "true" {
		a.cookies.Write(c, &http.Cookie{
			Name:     RememberCookieName,
			Value:    admin.Username,
			Path:     "/",
			MaxAge:   int(rememberLifetime.Seconds()),
			HttpOnly: true,
			Secure:   c.Request.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		}, false)
	}

	if isLocalURL(returnURL) {
		c.Redirect(http.StatusFound, returnURL)
		return
	}
	c.Redirect(http.StatusFound, dashboardPath)
}

// logout handles POST /Admin/Logout
func (a *AdminController) logout(c *gin.Context) {
	session.Default(c).Clear()
	c.Redirect(http.StatusFound, a.loginPath)
}

// showDashboard handles GET /Admin/Dashboard
func (a *AdminController) showDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	overview, err := a.dashboard.GetOverview(ctx)
	if err != nil {
		logger.Error("Failed to build dashboard: %v", err)
		c.String(http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	workloads, err := a.dashboard.GetAgentWorkloads(ctx)
	if err != nil {
		logger.Error("Failed to get agent workloads: %v", err)
		c.String(http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	c.HTML(http.StatusOK, "dashboard.tmpl", a.view(c, "Dashboard", gin.H{
		"Overview":  overview,
		"Workloads": workloads,
		"Statuses":  models.OrderStatuses,
	}))
}

// showOrders handles GET /Admin/Orders
func (a *AdminController) showOrders(c *gin.Context) {
	status := c.Query("status")
	if status != "" && !models.OrderStatus(status).Valid() {
		status = ""
	}
	page, limit := shared.ParsePagination(c)

	orders, total, err := a.orders.List(c.Request.Context(), shared.OrderFilter{Status: status}, page, limit)
	if err != nil {
		logger.Error("Failed to list orders: %v", err)
		c.String(http.StatusInternalServerError, "Failed to load orders")
		return
	}

	totalPages := (total + limit - 1) / limit
	if totalPages == 0 {
		totalPages = 1
	}
	prev, next := 0, 0
	if page > 1 {
		prev = page - 1
	}
	if page < totalPages {
		next = page + 1
	}

	c.HTML(http.StatusOK, "orders.tmpl", a.view(c, "Orders", gin.H{
		"Orders":     orders,
		"Status":     status,
		"Statuses":   models.OrderStatuses,
		"Page":       page,
		"Total":      total,
		"TotalPages": totalPages,
		"PrevPage":   prev,
		"NextPage":   next,
	}))
}

// isLocalURL accepts only same-origin paths so ReturnUrl cannot redirect off-site
func isLocalURL(u string) bool {
	if u == "" || u[0] != '/' {
		return false
	}
	if len(u) > 1 && (u[1] == '/' || u[1] == '\\') {
		return false
	}
	return !strings.ContainsAny(u, "\r\n")
}
