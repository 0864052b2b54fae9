package web

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStatic(t *testing.T) *echo.Echo {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>files</h1>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SECRET=1"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "empty"), 0755))

	e := echo.New()
	e.GET("/folders", func(c echo.Context) error { return c.String(http.StatusOK, "api") })
	require.NoError(t, RegisterStaticRoutes(e, dir))
	return e
}

func get(e *echo.Echo, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRegisterStaticRoutes(t *testing.T) {
	e := setupStatic(t)

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/", http.StatusOK, "<h1>files</h1>"},
		{"/app.js", http.StatusOK, "console.log(1)"},
		{"/folders", http.StatusOK, "api"},
		{"/missing.css", http.StatusNotFound, ""},
		{"/.env", http.StatusNotFound, ""},
		{"/empty/", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(e, tt.path)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestRegisterStaticRoutes_MissingDir(t *testing.T) {
	err := RegisterStaticRoutes(echo.New(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestFsName(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"/", ".", true},
		{"/a/b.js", "a/b.js", true},
		{"/../../etc/passwd", "etc/passwd", true},
		{"/.git/config", "", false},
	}

	for _, tt := range tests {
		got, ok := fsName(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
