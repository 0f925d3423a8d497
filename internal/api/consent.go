package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aklujeats/aklujeats/internal/mvc"
)

type consentController struct{ s *Server }

func (consentController) Name() string { return "Consent" }

func (cc consentController) Routes() []mvc.Route {
	return []mvc.Route{
		{Method: http.MethodPost, Template: "api/[controller]", Action: "Grant", Handler: cc.s.grantConsent},
		{Method: http.MethodDelete, Template: "api/[controller]", Action: "Withdraw", Handler: cc.s.withdrawConsent},
	}
}

// grantConsent handles POST /api/Consent
//
// @Summary      Accept non-essential cookies
// @Tags         Consent
// @Produce      json
// @Success      200 {object} models.APIResponse
// @Router       /api/Consent [post]
func (s *Server) grantConsent(c *gin.Context) {
	s.cookies.Grant(c)
	s.messageResponse(c, "Cookie consent recorded")
}

// withdrawConsent handles DELETE /api/Consent
//
// @Summary      Withdraw cookie consent
// @Tags         Consent
// @Produce      json
// @Success      200 {object} models.APIResponse
// @Router       /api/Consent [delete]
func (s *Server) withdrawConsent(c *gin.Context) {
	s.cookies.Withdraw(c)
	s.messageResponse(c, "Cookie consent withdrawn")
}
