package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CORSConfig holds the configuration for the CORS middleware.
type CORSConfig struct {
	// AllowOrigins lists origins allowed to make cross-origin requests.
	// Use ["*"] to allow all origins (default in debug mode); an empty
	// list denies every cross-origin caller.
	AllowOrigins []string

	// AllowMethods lists HTTP methods advertised on preflight.
	AllowMethods []string

	// AllowHeaders lists request headers advertised on preflight.
	AllowHeaders []string

	// AllowCredentials permits cookies and Authorization on cross-origin
	// requests. Credentialed responses must echo the concrete origin, so
	// the wildcard is never sent when this is set.
	AllowCredentials bool

	// MaxAge bounds how long browsers may cache a preflight result.
	// Zero or negative omits the header.
	MaxAge time.Duration
}

// DefaultCORSConfig returns a permissive configuration suitable for
// development. X-API-Key is advertised so browser-based tools can present
// service keys cross-origin.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-Request-ID", "X-API-Key"},
		AllowCredentials: false,
		MaxAge:           24 * time.Hour,
	}
}

// CORS returns a middleware enforcing DefaultCORSConfig.
func CORS() gin.HandlerFunc {
	return CORSWithConfig(DefaultCORSConfig())
}

// CORSWithConfig returns a middleware enforcing the given policy. Simple
// requests get the reflected origin; preflights additionally get the
// advertised methods, headers, and cache lifetime, and short-circuit
// with 204.
func CORSWithConfig(cfg CORSConfig) gin.HandlerFunc {
	allowMethods := strings.Join(cfg.AllowMethods, ", ")
	allowHeaders := strings.Join(cfg.AllowHeaders, ", ")
	maxAge := ""
	if cfg.MaxAge > 0 {
		maxAge = strconv.Itoa(int(cfg.MaxAge.Seconds()))
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}

		// Caches must key on Origin whenever CORS processing is active.
		c.Writer.Header().Add("Vary", "Origin")

		if !originAllowed(cfg.AllowOrigins, origin) {
			// Origin not allowed: no CORS headers at all.
			c.Next()
			return
		}

		if hasWildcardOrigin(cfg.AllowOrigins) && !cfg.AllowCredentials {
			c.Header("Access-Control-Allow-Origin", "*")
		} else {
			c.Header("Access-Control-Allow-Origin", origin)
		}

		if cfg.AllowCredentials {
			c.Header("Access-Control-Allow-Credentials", "true")
		}

		if c.Request.Method == http.MethodOptions {
			c.Writer.Header().Add("Vary", "Access-Control-Request-Method")
			c.Writer.Header().Add("Vary", "Access-Control-Request-Headers")
			c.Header("Access-Control-Allow-Methods", allowMethods)
			c.Header("Access-Control-Allow-Headers", allowHeaders)
			if maxAge != "" {
				c.Header("Access-Control-Max-Age", maxAge)
			}
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// originAllowed checks whether the given origin is in the allowed list.
func originAllowed(allowed []string, origin string) bool {
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func hasWildcardOrigin(allowed []string) bool {
	for _, a := range allowed {
		if a == "*" {
			return true
		}
	}
	return false
}
