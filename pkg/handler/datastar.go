package handler

import (
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"
)

const (
	dataStarAcceptHeader = "text/event-stream"
	dataStarQueryParam   = "datastar"
)

// Patch mode aliases for the modes this app uses.
const (
	PatchOuter   = datastar.ElementPatchModeOuter
	PatchInner   = datastar.ElementPatchModeInner
	PatchAppend  = datastar.ElementPatchModeAppend
	PatchPrepend = datastar.ElementPatchModePrepend
)

// IsDataStar reports whether the request comes from datastar: it accepts
// SSE, carries the datastar signals query parameter, or posts datastar
// content.
func IsDataStar(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), dataStarAcceptHeader) {
		return true
	}
	if r.URL.Query().Has(dataStarQueryParam) {
		return true
	}
	return strings.Contains(r.Header.Get("Content-Type"), "application/x-datastar")
}

// NewSSE creates a server-sent event generator for datastar responses.
func NewSSE(w http.ResponseWriter, r *http.Request) *datastar.ServerSentEventGenerator {
	return datastar.NewSSE(w, r)
}
