package middleware

import (
	"github.com/gin-gonic/gin"
)

// The API only answers with JSON and file attachments, nothing is rendered.
var securityHeaders = map[string]string{
	"X-Content-Type-Options":       "nosniff",
	"X-Frame-Options":              "DENY",
	"Referrer-Policy":              "no-referrer",
	"Content-Security-Policy":      "default-src 'none'; frame-ancestors 'none'",
	"Cross-Origin-Resource-Policy": "same-site",
	"Permissions-Policy":           "camera=(), microphone=(), geolocation=()",
}

const hstsValue = "max-age=31536000; includeSubDomains"

// SecurityHeaders hardens every response and disables caching. HSTS is only
// sent when the request reached us over TLS.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		for k, v := range securityHeaders {
			h.Set(k, v)
		}
		h.Set("Cache-Control", "no-store")
		if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
			h.Set("Strict-Transport-Security", hstsValue)
		}

		c.Next()
	}
}
