package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var (
	// bearer token, JSON bodies and the client's request id
	corsAllowHeaders = strings.Join([]string{
		"Authorization", "Content-Type", "Accept", "Accept-Encoding", headerRequestID,
	}, ", ")
	// report downloads read the file name and archive key, rate limited
	// clients read Retry-After
	corsExposeHeaders = strings.Join([]string{
		"Content-Disposition", "Content-Length", "Content-Type",
		headerReportArchive, headerRetryAfter, headerRequestID,
	}, ", ")
	corsAllowMethods = strings.Join([]string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
	}, ", ")
)

const corsMaxAge = "43200"

// originPolicy matches request origins against the configured list. A "*"
// entry accepts any origin but then no credentials are allowed.
type originPolicy struct {
	origins  map[string]bool
	wildcard bool
}

func newOriginPolicy(allowOrigins []string) originPolicy {
	p := originPolicy{origins: make(map[string]bool, len(allowOrigins))}
	for _, o := range allowOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			p.wildcard = true
			continue
		}
		if o != "" {
			p.origins[strings.ToLower(o)] = true
		}
	}
	return p
}

func (p originPolicy) allows(origin string) bool {
	return p.wildcard || p.origins[strings.ToLower(origin)]
}

// CORS lets the configured front-end origins call the API. Preflights from
// other origins are refused, plain requests from them go through without
// CORS headers and the browser blocks the response.
func CORS(allowOrigins []string) gin.HandlerFunc {
	policy := newOriginPolicy(allowOrigins)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		preflight := c.Request.Method == http.MethodOptions &&
			c.GetHeader("Access-Control-Request-Method") != ""

		if origin == "" {
			if preflight {
				c.AbortWithStatus(http.StatusNoContent)
				return
			}
			c.Next()
			return
		}

		c.Writer.Header().Add("Vary", "Origin")
		if !policy.allows(origin) {
			if preflight {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Next()
			return
		}

		c.Header("Access-Control-Allow-Origin", origin)
		if !policy.wildcard {
			c.Header("Access-Control-Allow-Credentials", "true")
		}

		if preflight {
			c.Header("Access-Control-Allow-Methods", corsAllowMethods)
			c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
			c.Header("Access-Control-Max-Age", corsMaxAge)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Header("Access-Control-Expose-Headers", corsExposeHeaders)
		c.Next()
	}
}
