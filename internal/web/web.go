// Package web embeds the page templates and static assets.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Layout is the layout every page renders into.
const Layout = "layouts/main"

// NewEngine returns the Fiber view engine over the embedded templates.
func NewEngine() *html.Engine {
	engine := html.NewFileSystem(http.FS(mustSub(templatesFS, "templates")), ".html")
	engine.AddFuncMap(Funcs())
	return engine
}

// Static serves the embedded assets under /static.
func Static() http.FileSystem {
	return http.FS(mustSub(staticFS, "static"))
}

// Funcs are the helpers available in templates.
func Funcs() map[string]any {
	return map[string]any{
		"shortDate": func(t time.Time) string {
			return t.UTC().Format("Jan 02, 15:04")
		},
		"longDate": func(t time.Time) string {
			return t.UTC().Format("Monday, January 2, 2006 at 15:04 UTC")
		},
		"isoDate": func(t time.Time) string {
			return t.UTC().Format(time.RFC3339)
		},
		"join": strings.Join,
	}
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
