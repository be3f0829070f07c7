package server

import (
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/huanfeng/adminpwa/pkg/utils"
)

// middlewareFactories maps route_middleware names to echo middleware.
// A nil factory is an accepted name that installs nothing.
var middlewareFactories = map[string]func(utils.Logger) echo.MiddlewareFunc{
	"recover":    func(utils.Logger) echo.MiddlewareFunc { return middleware.Recover() },
	"logger":     requestLogger,
	"gzip":       func(utils.Logger) echo.MiddlewareFunc { return middleware.Gzip() },
	"secure":     func(utils.Logger) echo.MiddlewareFunc { return middleware.Secure() },
	"cors":       func(utils.Logger) echo.MiddlewareFunc { return middleware.CORS() },
	"request-id": func(utils.Logger) echo.MiddlewareFunc { return middleware.RequestID() },
	"web":        nil,
}

// MiddlewareNames lists the accepted route_middleware names
func MiddlewareNames() []string {
	names := make([]string, 0, len(middlewareFactories))
	for name := range middlewareFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// buildMiddleware resolves names in order; unknown names are logged and skipped
func buildMiddleware(names []string, logger utils.Logger) []echo.MiddlewareFunc {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	var chain []echo.MiddlewareFunc
	seen := make(map[string]bool)
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		factory, ok := middlewareFactories[name]
		if !ok {
			logger.Warn("Unknown route middleware %q ignored (known: %s)", raw, strings.Join(MiddlewareNames(), ", "))
			continue
		}
		if factory == nil {
			continue
		}
		chain = append(chain, factory(logger))
	}
	return chain
}

// requestLogger logs one line per request through the application logger
func requestLogger(logger utils.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("%s %s %d (%v)", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	})
}
