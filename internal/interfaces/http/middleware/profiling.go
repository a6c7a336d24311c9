package middleware

import (
	"context"
	"strings"

	"github.com/crm/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// ProfilingConfig holds configuration for the profiling middleware.
type ProfilingConfig struct {
	// Enabled controls whether profiling labels are added to requests.
	Enabled bool
	// SkipPaths are exact paths that never get profiling labels.
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that never get profiling labels.
	SkipPathPrefixes []string
}

// DefaultProfilingConfig enables labels everywhere except probe and debug
// endpoints.
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled: true,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/ready",
			"/metrics",
		},
		SkipPathPrefixes: []string{
			"/debug",
		},
	}
}

// Profiling returns the profiling middleware with default configuration.
func Profiling() gin.HandlerFunc {
	return ProfilingWithConfig(DefaultProfilingConfig())
}

// ProfilingWithConfig attaches Pyroscope labels to the request context so
// profile samples can be sliced by controller, route pattern and method.
// All three label values are low cardinality: the route is the matched
// pattern, never the raw path.
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return passthrough
	}

	exact := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		exact[p] = struct{}{}
	}
	skip := func(path string) bool {
		if _, ok := exact[path]; ok {
			return true
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
		return false
	}

	return func(c *gin.Context) {
		if skip(c.Request.URL.Path) {
			c.Next()
			return
		}

		telemetry.WithProfilingLabels(c.Request.Context(), requestLabels(c), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// requestLabels derives the label set for one request from gin's matched
// route.
func requestLabels(c *gin.Context) map[string]string {
	route := c.FullPath()
	return telemetry.HTTPRequestLabels(resourceFromRoute(route), route, c.Request.Method)
}

// resourceFromRoute picks the resource segment out of a route pattern:
// "/api/v1/customers/:id" yields "customers". Version segments and path
// parameters are skipped.
func resourceFromRoute(route string) string {
	for _, part := range strings.Split(route, "/") {
		switch {
		case part == "" || part == "api" || isVersionSegment(part):
			continue
		case strings.HasPrefix(part, ":") || strings.HasPrefix(part, "{"):
			continue
		default:
			return part
		}
	}
	return ""
}

// isVersionSegment reports whether a path segment looks like an API version
// such as v1 or V2.
func isVersionSegment(s string) bool {
	if len(s) < 2 || (s[0] != 'v' && s[0] != 'V') {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
