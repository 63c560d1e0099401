// Package render produces brand-themed, localized HTML pages and caches
// them according to each page's rendering policy.
package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/pitabwire/util"

	"github.com/pitabwire/whitelabel/brand"
	"github.com/pitabwire/whitelabel/localization"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// Policy selects how a page's rendered output is cached.
type Policy int

const (
	// PolicyStatic renders once per locale and serves the cached copy
	// until a mutation invalidates it.
	PolicyStatic Policy = iota
	// PolicyRevalidate serves the cached copy until its revalidation
	// interval elapses, then re-renders on the next request.
	PolicyRevalidate
	// PolicyDynamic renders on every request and never touches the cache.
	PolicyDynamic
)

func (p Policy) String() string {
	switch p {
	case PolicyStatic:
		return "static"
	case PolicyRevalidate:
		return "revalidate"
	case PolicyDynamic:
		return "dynamic"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// DataFunc loads the dynamic data a page template renders.
type DataFunc func(ctx context.Context) (any, error)

// Page describes one server-rendered route.
type Page struct {
	// Path is the canonical route, also the invalidation path for the page.
	Path string
	// Template is the name of the template file rendering the page.
	Template string
	Policy   Policy
	// RevalidateAfter bounds cache freshness for PolicyRevalidate pages.
	RevalidateAfter time.Duration
	// Data loads the view data; nil renders the template without data.
	Data DataFunc
}

// Renderer renders pages for the single brand this deployment serves.
// The brand is threaded in at construction so rendering stays a pure
// function of its inputs.
type Renderer struct {
	activeBrand brand.Record
	translator  localization.Manager
	pages       *PageCache
	templates   *template.Template
}

// NewRenderer parses the embedded templates and binds the renderer to the
// active brand and its translation manager.
func NewRenderer(b brand.Record, translator localization.Manager, pages *PageCache) (*Renderer, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("could not parse page templates: %w", err)
	}

	return &Renderer{
		activeBrand: b,
		translator:  translator,
		pages:       pages,
		templates:   templates,
	}, nil
}

// Brand exposes the active brand record.
func (r *Renderer) Brand() brand.Record {
	return r.activeBrand
}

// pageView is the data every template executes against.
type pageView struct {
	ctx        context.Context
	translator localization.Manager

	Brand      brand.Record
	Locale     string
	Fallback   bool
	Path       string
	Data       any
	RenderedAt time.Time
}

// T translates a message id into the view's locale.
func (v pageView) T(messageID string) string {
	return v.translator.Translate(v.ctx, v.Locale, messageID)
}

// Render writes the page for the requested locale, serving from cache
// when the page's policy allows it.
func (r *Renderer) Render(ctx context.Context, w http.ResponseWriter, page Page, requestedLocale string) error {
	resolution := localization.ResolveDetailed(requestedLocale, r.activeBrand)
	locale := resolution.Resolved
	ctx = localization.ToContext(ctx, locale)

	if page.Policy != PolicyDynamic && r.pages != nil {
		cached, found, err := r.pages.Get(ctx, page.Path, locale)
		if err != nil {
			util.Log(ctx).WithError(err).WithField("path", page.Path).
				Warn("page cache lookup failed, rendering fresh")
		}
		if found {
			writePage(w, cached.Body, locale, "HIT")
			return nil
		}
	}

	var data any
	if page.Data != nil {
		var err error
		data, err = page.Data(ctx)
		if err != nil {
			return fmt.Errorf("could not load data for %s: %w", page.Path, err)
		}
	}

	view := pageView{
		ctx:        ctx,
		translator: r.translator,
		Brand:      r.activeBrand,
		Locale:     locale,
		Fallback:   resolution.FallbackUsed,
		Path:       page.Path,
		Data:       data,
		RenderedAt: time.Now().UTC(),
	}

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, page.Template, view); err != nil {
		return fmt.Errorf("could not execute template %s: %w", page.Template, err)
	}

	if page.Policy != PolicyDynamic && r.pages != nil {
		ttl := time.Duration(0)
		if page.Policy == PolicyRevalidate {
			ttl = page.RevalidateAfter
		}
		entry := CachedPage{Body: buf.String(), Locale: locale, RenderedAt: view.RenderedAt}
		if err := r.pages.Set(ctx, page.Path, locale, entry, ttl); err != nil {
			util.Log(ctx).WithError(err).WithField("path", page.Path).
				Warn("could not cache rendered page")
		}
	}

	writePage(w, buf.String(), locale, "MISS")
	return nil
}

// Handler adapts a page into an http.HandlerFunc, resolving the locale
// from the request. Render failures surface as plain 500s; there is no
// partial page to recover.
func (r *Renderer) Handler(page Page) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		requested := localization.ResolveRequest(req, r.activeBrand)

		if err := r.Render(req.Context(), w, page, requested); err != nil {
			util.Log(req.Context()).WithError(err).WithField("path", page.Path).
				Error("page render failed")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

func writePage(w http.ResponseWriter, body, locale, cacheState string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Language", locale)
	w.Header().Set("X-Cache", cacheState)
	_, _ = w.Write([]byte(body))
}
