package main

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Page holds the parsed entry page and its static assets.
type Page struct {
	index  *template.Template
	assets fs.FS
}

func LoadPage() (*Page, error) {
	index, err := template.ParseFS(templatesFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse index template: %w", err)
	}

	assets, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("open static assets: %w", err)
	}

	return &Page{index: index, assets: assets}, nil
}

func (p *Page) Render(w io.Writer) error {
	return p.index.Execute(w, nil)
}

func (p *Page) StaticHandler() http.Handler {
	return http.StripPrefix("/static/", http.FileServer(http.FS(p.assets)))
}
