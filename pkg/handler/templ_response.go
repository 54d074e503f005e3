package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"
)

// TemplComponent matches github.com/a-h/templ.Component without importing it,
// so handlers stay decoupled from the template engine.
type TemplComponent interface {
	Render(ctx context.Context, w io.Writer) error
}

// TemplOption configures how a component is patched into the DOM.
type TemplOption = datastar.PatchElementOption

// WithTarget sets the CSS selector the component is patched into.
func WithTarget(selector string) TemplOption {
	return datastar.WithSelector(selector)
}

// WithPatchMode sets how the component is merged into the DOM.
func WithPatchMode(mode datastar.ElementPatchMode) TemplOption {
	return datastar.WithMode(mode)
}

type templResponse struct {
	component TemplComponent
	options   []datastar.PatchElementOption
}

func (t templResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if IsDataStar(r) {
		sse := datastar.NewSSE(w, r)
		return sse.PatchElementTempl(t.component, t.options...)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return t.component.Render(r.Context(), w)
}

// Templ renders a component: as an SSE element patch for datastar requests,
// directly as HTML otherwise.
func Templ(component TemplComponent, opts ...TemplOption) Response {
	return templResponse{component: component, options: opts}
}

type templPartialResponse struct {
	partial TemplComponent
	full    TemplComponent
	options []datastar.PatchElementOption
}

func (t templPartialResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if IsDataStar(r) {
		sse := datastar.NewSSE(w, r)
		return sse.PatchElementTempl(t.partial, t.options...)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return t.full.Render(r.Context(), w)
}

// TemplPartial patches only the partial component for datastar requests and
// renders the full component for regular requests. Useful for routes serving
// both a full page and an in-page refresh.
func TemplPartial(partial, full TemplComponent, opts ...TemplOption) Response {
	return templPartialResponse{partial: partial, full: full, options: opts}
}
