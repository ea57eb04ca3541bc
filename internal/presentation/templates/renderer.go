package templates

import (
	"fmt"
	"html/template"

	"github.com/gin-gonic/gin/render"
)

type navLink struct {
	Page  string
	Href  string
	Label string
}

var links = []navLink{
	{PageRoadmaps, "/roadmaps", "Roadmaps"},
	{PageResources, "/resources", "Resources"},
	{PageAppHub, "/app-hub", "App Hub"},
	{PageAbout, "/about", "About"},
	{PageContact, "/contact", "Contact"},
}

var funcs = template.FuncMap{
	"stylesheet": func() template.CSS { return Stylesheet },
	"navLinks":   func() []navLink { return links },
	"colorClass": ColorClass,
	"barStyle":   BarStyle,
	"inc":        func(i int) int { return i + 1 },
}

// Renderer is a gin HTMLRender over the embedded page set. Every page is
// its own clone of the layout so "content" blocks never collide.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page once.
func NewRenderer() (*Renderer, error) {
	layout, err := template.New("layout").Funcs(funcs).Parse(layoutHTML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageHTML))
	for name, body := range pageHTML {
		t, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.New(name).Parse(body); err != nil {
			return nil, fmt.Errorf("failed to parse page %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Renderer{pages: pages}, nil
}

// Instance implements render.HTMLRender. Unknown names fall back to the
// not-found page.
func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.pages[name]
	if !ok {
		t = r.pages[PageNotFound]
	}
	return render.HTML{Template: t, Name: "layout", Data: data}
}
