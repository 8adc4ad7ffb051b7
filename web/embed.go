// Package web bundles the HTML templates and static assets served by the
// demoshelf UI.
package web

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates/*.tmpl
var templateFiles embed.FS

//go:embed static/*
var staticFiles embed.FS

// Templates parses the bundled page templates.
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFiles, "templates/*.tmpl")
}

// Static returns a filesystem rooted at the bundled static assets.
func Static() (fs.FS, error) {
	return fs.Sub(staticFiles, "static")
}
