// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

// Package views renders the server-side HTML pages.
//
// Every page under templates/pages defines a "content" block that is
// executed inside templates/layout.html, with the shared blocks of
// templates/partials available. Pages are parsed once at startup;
// rendering goes through a buffer so a template error never leaves a
// half-written response.
package views

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"sync"
)

//go:embed templates
var templateFS embed.FS

const (
	layoutTemplate   = "templates/layout.html"
	partialsTemplate = "templates/partials/*.html"
)

// ErrUnknownPage is returned by Render for a page that was not parsed.
var ErrUnknownPage = errors.New("unknown page")

// Renderer holds the parsed page set.
type Renderer struct {
	pages map[string]*template.Template
	bufs  sync.Pool
}

// New parses the embedded layout and pages.
func New() (*Renderer, error) {
	files, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	r := &Renderer{
		pages: make(map[string]*template.Template, len(files)),
		bufs: sync.Pool{New: func() interface{} {
			return new(bytes.Buffer)
		}},
	}
	for _, file := range files {
		name := strings.TrimSuffix(path.Base(file), ".html")
		t, err := template.New(path.Base(layoutTemplate)).
			Funcs(funcMap).
			ParseFS(templateFS, layoutTemplate, partialsTemplate, file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse page %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Has reports whether name is a known page.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Render executes page name into w with the given status.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page *Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPage, name)
	}

	buf := r.bufs.Get().(*bytes.Buffer)
	buf.Reset()
	defer r.bufs.Put(buf)

	if err := t.ExecuteTemplate(buf, path.Base(layoutTemplate), page); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
