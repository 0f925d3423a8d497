package middleware

import (
	"net"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"

	"github.com/aklujeats/aklujeats/internal/logger"
)

// HTTPSRedirect sends plain-HTTP requests to the HTTPS URL with a temporary
// (307) redirect. Requests forwarded by a proxy with X-Forwarded-Proto: https
// count as secure. The redirect target uses httpsPort; 0 disables the redirect.
func HTTPSRedirect(httpsPort int) gin.HandlerFunc {
	if httpsPort == 0 {
		logger.Warning("Failed to determine the https port for redirect; HTTPS redirection is disabled")
		return func(c *gin.Context) { c.Next() }
	}

	hostFunc := secure.SSLHostFunc(func(host string) string {
		return httpsHost(host, httpsPort)
	})
	s := secure.New(secure.Options{
		SSLRedirect:          true,
		SSLTemporaryRedirect: true,
		SSLHostFunc:          &hostFunc,
		SSLProxyHeaders:      map[string]string{"X-Forwarded-Proto": "https"},
	})

	return func(c *gin.Context) {
		if err := s.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
		// Avoid header rewrite if response is a redirection
		if status := c.Writer.Status(); status > 300 && status < 399 {
			c.Abort()
		}
	}
}

// httpsHost replaces the port of host with httpsPort, omitting the default 443
func httpsHost(host string, httpsPort int) string {
	hostname := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		hostname = h
	}
	if httpsPort == 443 {
		if net.ParseIP(hostname) != nil && net.ParseIP(hostname).To4() == nil {
			return "[" + hostname + "]"
		}
		return hostname
	}
	return net.JoinHostPort(hostname, strconv.Itoa(httpsPort))
}
