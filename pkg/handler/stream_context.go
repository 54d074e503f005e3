package handler

import (
	"encoding/json"

	"github.com/starfederation/datastar-go/datastar"
)

// StreamContext extends Context with methods for pushing updates through an
// established SSE connection.
type StreamContext interface {
	Context

	// SendComponent patches a component into the page.
	SendComponent(component TemplComponent, opts ...TemplOption) error

	// SendSignals updates frontend signal values.
	SendSignals(signals map[string]any) error

	// SendRedirect navigates the client to url.
	SendRedirect(url string) error
}

type streamContext struct {
	Context
	sse *datastar.ServerSentEventGenerator
}

func (c *streamContext) SendComponent(component TemplComponent, opts ...TemplOption) error {
	if c.sse == nil {
		return ErrSSENotInitialized
	}
	return c.sse.PatchElementTempl(component, opts...)
}

func (c *streamContext) SendSignals(signals map[string]any) error {
	if c.sse == nil {
		return ErrSSENotInitialized
	}
	data, err := json.Marshal(signals)
	if err != nil {
		return err
	}
	return c.sse.PatchSignals(data)
}

func (c *streamContext) SendRedirect(url string) error {
	if c.sse == nil {
		return ErrSSENotInitialized
	}
	return c.sse.Redirect(url)
}
