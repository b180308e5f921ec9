// Package view renders the server's HTML dashboard pages.
package view

import (
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
)

// Renderer loads templates from a directory and renders them per
// request. Templates are parsed lazily so a missing file surfaces as a
// render error on the page that needs it, not at startup.
type Renderer struct {
	dir string
}

// NewRenderer returns a renderer over the given template directory.
func NewRenderer(dir string) *Renderer {
	return &Renderer{dir: dir}
}

// MissingTemplateError is returned when a page's template file does not
// exist. The API reports it as 500.
type MissingTemplateError struct {
	Name string
}

func (e *MissingTemplateError) Error() string {
	return fmt.Sprintf("template %q not found", e.Name)
}

// StatusCode returns the HTTP status code for this error.
func (e *MissingTemplateError) StatusCode() int {
	return http.StatusInternalServerError
}

// Render writes the named template to w with the given data.
func (r *Renderer) Render(w http.ResponseWriter, name string, data any) error {
	path := filepath.Join(r.dir, name)
	if _, err := os.Stat(path); err != nil {
		return &MissingTemplateError{Name: name}
	}

	tmpl, err := template.ParseFiles(path)
	if err != nil {
		return fmt.Errorf("failed to parse template %q: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render template %q: %w", name, err)
	}
	return nil
}
