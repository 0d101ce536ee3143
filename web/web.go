// Package web holds the HTML templates, compiled into the binary.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var templatesFS embed.FS

// Layout is the base layout every page renders into.
const Layout = "layouts/main"

// NewEngine returns the template engine for fiber.Config.Views.
func NewEngine() *html.Engine {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("date", func(t time.Time) string {
		return t.Format("Jan 2, 2006")
	})
	engine.AddFunc("datetime", func(t time.Time) string {
		return t.Format("2006-01-02 15:04")
	})
	return engine
}
