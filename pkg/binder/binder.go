// Package binder populates request structs from query parameters and form
// fields using `query:` and `form:` struct tags. Binders report
// ErrBinderNotApplicable for requests they cannot serve (e.g. a form binder
// on a GET request) so they can be stacked and applied selectively.
package binder

import (
	"fmt"
	"mime"
	"net/http"
)

// Query returns a binder populating fields tagged `query:` from URL query
// parameters.
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindToStruct(v, "query", r.URL.Query(), ErrInvalidQuery)
	}
}

// Form returns a binder populating fields tagged `form:` from an
// application/x-www-form-urlencoded body. Requests without a body report
// ErrBinderNotApplicable so the binder can share a route with GET rendering.
func Form() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			return ErrBinderNotApplicable
		}

		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			return ErrBinderNotApplicable
		}
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil || mediaType != "application/x-www-form-urlencoded" {
			return fmt.Errorf("%w: got %q, expected application/x-www-form-urlencoded", ErrUnsupportedMediaType, contentType)
		}

		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidForm, err)
		}
		return bindToStruct(v, "form", r.PostForm, ErrInvalidForm)
	}
}
