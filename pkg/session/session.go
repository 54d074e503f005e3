// Package session holds the single piece of client-persisted state in the
// application: the subscription id a visitor obtained from a successful trial
// signup. The id lives in a signed browser cookie with no expiry and can be
// overridden per request by a `sub` query parameter, which makes demo links
// shareable without touching the stored value.
package session

import (
	"net/http"

	"github.com/dmitrymomot/cardless-trial/pkg/cookie"
)

const (
	// CookieName is the cookie carrying the subscription id.
	CookieName = "subscription_id"

	// QueryParam overrides the stored subscription id for a single view.
	QueryParam = "sub"
)

// Store reads and writes the visitor's subscription id.
type Store struct {
	cookies *cookie.Manager
}

func NewStore(cookies *cookie.Manager) *Store {
	return &Store{cookies: cookies}
}

// Get returns the stored subscription id, ignoring any query override.
// A missing or tampered cookie reads as no subscription.
func (s *Store) Get(r *http.Request) (string, bool) {
	id, err := s.cookies.GetSigned(r, CookieName)
	if err != nil || id == "" {
		return "", false
	}
	return id, true
}

// Resolve returns the subscription id for the current view: the `sub` query
// parameter when present, otherwise the stored value.
func (s *Store) Resolve(r *http.Request) (string, bool) {
	if id := r.URL.Query().Get(QueryParam); id != "" {
		return id, true
	}
	return s.Get(r)
}

// Set persists the subscription id. Written once per successful signup.
func (s *Store) Set(w http.ResponseWriter, id string) {
	s.cookies.SetSigned(w, CookieName, id)
}

// Clear removes the stored subscription id.
func (s *Store) Clear(w http.ResponseWriter) {
	s.cookies.Delete(w, CookieName)
}
