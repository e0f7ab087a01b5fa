package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// VersionMiddleware stamps responses with the API version they were served
// under and rejects unsupported version prefixes.
type VersionMiddleware struct {
	supportedVersions map[string]bool
	defaultVersion    string
}

func NewVersionMiddleware() *VersionMiddleware {
	return &VersionMiddleware{
		supportedVersions: map[string]bool{"v1": true},
		defaultVersion:    "v1",
	}
}

// VersionHeader adds version information to response headers
func (vm *VersionMiddleware) VersionHeader(version string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("X-API-Version", version)
			return next(c)
		}
	}
}

// APIVersionResolver resolves the API version from the request path
func (vm *VersionMiddleware) APIVersionResolver() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			version := vm.defaultVersion
			if segments := strings.SplitN(strings.TrimPrefix(c.Request().URL.Path, "/"), "/", 2); len(segments) > 0 &&
				strings.HasPrefix(segments[0], "v") && len(segments[0]) > 1 {
				version = segments[0]
				if !vm.supportedVersions[version] {
					return c.JSON(http.StatusNotFound, map[string]string{
						"error": "Unsupported API version",
					})
				}
			}
			c.Set("api_version", version)
			return next(c)
		}
	}
}
