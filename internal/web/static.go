// Package web serves the presentation layer's static files from a directory.
package web

import (
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
)

// RegisterStaticRoutes serves files under dir for every path no other route
// claims. Directories serve their index.html; dotfiles are never served.
// The API routes should be registered before calling this function.
func RegisterStaticRoutes(e *echo.Echo, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("static directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("static directory %s is not a directory", dir)
	}

	staticFS := os.DirFS(dir)
	fileServer := http.FileServer(http.FS(staticFS))

	e.GET("/*", func(c echo.Context) error {
		name, ok := fsName(c.Request().URL.Path)
		if !ok {
			return echo.ErrNotFound
		}

		stat, err := fs.Stat(staticFS, name)
		if err != nil {
			return echo.ErrNotFound
		}
		if stat.IsDir() {
			if _, err := fs.Stat(staticFS, path.Join(name, "index.html")); err != nil {
				return echo.ErrNotFound
			}
		}

		fileServer.ServeHTTP(c.Response(), c.Request())
		return nil
	})

	return nil
}

// fsName maps a request path to an fs.FS name, rejecting dotfiles.
func fsName(requestPath string) (string, bool) {
	clean := path.Clean("/" + requestPath)
	name := strings.TrimPrefix(clean, "/")
	if name == "" {
		return ".", true
	}
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") {
			return "", false
		}
	}
	return name, true
}
