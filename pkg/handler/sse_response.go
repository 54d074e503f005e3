package handler

import (
	"net/http"
)

// SSEHandler runs for the lifetime of an SSE connection, pushing updates
// through the StreamContext until it returns or the client disconnects.
type SSEHandler func(ctx StreamContext) error

type sseResponse struct {
	handler SSEHandler
}

func (s sseResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if !IsDataStar(r) {
		return NewHTTPError(http.StatusBadRequest, "SSE endpoint requires a datastar connection")
	}

	base := NewContext(w, r)
	if base.SSE() == nil {
		return ErrSSENotInitialized
	}

	ctx := &streamContext{
		Context: base,
		sse:     base.SSE(),
	}
	return s.handler(ctx)
}

// SSE creates a streaming response that runs the given handler over the
// datastar SSE connection. Handlers can push multiple element patches over
// time, e.g. progress updates during a long-running operation.
func SSE(handler SSEHandler) Response {
	return sseResponse{handler: handler}
}
