package handler_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cardless-trial/pkg/binder"
	"github.com/dmitrymomot/cardless-trial/pkg/handler"
)

type componentFunc func(ctx context.Context, w io.Writer) error

func (f componentFunc) Render(ctx context.Context, w io.Writer) error {
	return f(ctx, w)
}

func textComponent(s string) componentFunc {
	return func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	}
}

type checkoutRequest struct {
	PriceID string `query:"priceId"`
	Email   string `form:"email"`
}

func TestWrap_BindsQueryAndForm(t *testing.T) {
	t.Parallel()

	var got checkoutRequest
	h := handler.Wrap(
		handler.HandlerFunc[handler.Context, checkoutRequest](
			func(ctx handler.Context, req checkoutRequest) handler.Response {
				got = req
				return handler.Templ(textComponent("<p>ok</p>"))
			},
		),
		handler.WithBinders[handler.Context, checkoutRequest](binder.Query(), binder.Form()),
	)

	form := url.Values{"email": {"a@b.com"}}
	r := httptest.NewRequest(http.MethodPost, "/signup?priceId=pri_1", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, r)

	assert.Equal(t, "pri_1", got.PriceID)
	assert.Equal(t, "a@b.com", got.Email)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWrap_SkipsNotApplicableBinder(t *testing.T) {
	t.Parallel()

	h := handler.Wrap(
		handler.HandlerFunc[handler.Context, checkoutRequest](
			func(ctx handler.Context, req checkoutRequest) handler.Response {
				return handler.Templ(textComponent("<p>ok</p>"))
			},
		),
		handler.WithBinders[handler.Context, checkoutRequest](binder.Query(), binder.Form()),
	)

	// GET request: form binder is not applicable and must not fail the request.
	r := httptest.NewRequest(http.MethodGet, "/signup?priceId=pri_1", nil)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<p>ok</p>")
}

func TestWrap_BindErrorGoesToErrorHandler(t *testing.T) {
	t.Parallel()

	var handlerErr error
	h := handler.Wrap(
		handler.HandlerFunc[handler.Context, checkoutRequest](
			func(ctx handler.Context, req checkoutRequest) handler.Response {
				t.Fatal("handler must not run after bind failure")
				return nil
			},
		),
		handler.WithBinders[handler.Context, checkoutRequest](binder.Form()),
		handler.WithErrorHandler[handler.Context, checkoutRequest](
			func(ctx handler.Context, err error) {
				handlerErr = err
				http.Error(ctx.ResponseWriter(), "bad request", http.StatusBadRequest)
			},
		),
	)

	r := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{}`))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, r)

	assert.ErrorIs(t, handlerErr, binder.ErrUnsupportedMediaType)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWrap_NilResponse(t *testing.T) {
	t.Parallel()

	var handlerErr error
	h := handler.Wrap(
		handler.HandlerFunc[handler.Context, struct{}](
			func(ctx handler.Context, _ struct{}) handler.Response {
				return nil
			},
		),
		handler.WithErrorHandler[handler.Context, struct{}](
			func(ctx handler.Context, err error) { handlerErr = err },
		),
	)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.ErrorIs(t, handlerErr, handler.ErrNilResponse)
}

func TestWrap_DefaultErrorHandlerUsesHTTPError(t *testing.T) {
	t.Parallel()

	h := handler.Wrap(
		handler.HandlerFunc[handler.Context, struct{}](
			func(ctx handler.Context, _ struct{}) handler.Response {
				return errorResponse{handler.ErrNotFound}
			},
		),
	)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not_found")
}

type errorResponse struct{ err error }

func (e errorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return e.err
}

func TestTempl_RegularRequestRendersHTML(t *testing.T) {
	t.Parallel()

	resp := handler.Templ(textComponent("<h1>Pricing</h1>"))
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	require.NoError(t, resp.Render(w, r))
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<h1>Pricing</h1>")
}

func TestTempl_DataStarRequestPatchesViaSSE(t *testing.T) {
	t.Parallel()

	resp := handler.Templ(textComponent("<div>patched</div>"), handler.WithTarget("#status"))
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept", "text/event-stream")

	require.NoError(t, resp.Render(w, r))
	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")
	assert.Contains(t, w.Body.String(), "<div>patched</div>")
	assert.Contains(t, w.Body.String(), "#status")
}

func TestTemplPartial(t *testing.T) {
	t.Parallel()

	resp := handler.TemplPartial(
		textComponent("<div>card</div>"),
		textComponent("<html>full page</html>"),
	)

	t.Run("datastar gets partial", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Accept", "text/event-stream")

		require.NoError(t, resp.Render(w, r))
		assert.Contains(t, w.Body.String(), "<div>card</div>")
		assert.NotContains(t, w.Body.String(), "full page")
	})

	t.Run("regular gets full page", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		require.NoError(t, resp.Render(w, r))
		assert.Contains(t, w.Body.String(), "full page")
	})
}

func TestRedirect(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	require.NoError(t, handler.Redirect("/dashboard").Render(w, r))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestSSE_RejectsNonDataStarRequest(t *testing.T) {
	t.Parallel()

	resp := handler.SSE(func(stream handler.StreamContext) error {
		t.Fatal("stream handler must not run")
		return nil
	})

	err := resp.Render(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	var httpErr handler.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestSSE_StreamsComponents(t *testing.T) {
	t.Parallel()

	resp := handler.SSE(func(stream handler.StreamContext) error {
		if err := stream.SendComponent(textComponent("<div>step 1</div>"), handler.WithTarget("#flow")); err != nil {
			return err
		}
		return stream.SendComponent(textComponent("<div>step 2</div>"), handler.WithTarget("#flow"))
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/signup/trial", nil)
	r.Header.Set("Accept", "text/event-stream")

	require.NoError(t, resp.Render(w, r))
	body := w.Body.String()
	assert.Contains(t, body, "<div>step 1</div>")
	assert.Contains(t, body, "<div>step 2</div>")
}

func TestSSE_PropagatesHandlerError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("stream failed")
	resp := handler.SSE(func(stream handler.StreamContext) error {
		return wantErr
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/signup/trial", nil)
	r.Header.Set("Accept", "text/event-stream")

	assert.ErrorIs(t, resp.Render(w, r), wantErr)
}

func TestIsDataStar(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		mod  func(r *http.Request)
		want bool
	}{
		{"plain request", func(r *http.Request) {}, false},
		{"accept sse", func(r *http.Request) { r.Header.Set("Accept", "text/event-stream") }, true},
		{"datastar query param", func(r *http.Request) { r.URL.RawQuery = "datastar=%7B%7D" }, true},
		{"datastar content type", func(r *http.Request) { r.Header.Set("Content-Type", "application/x-datastar") }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			tc.mod(r)
			assert.Equal(t, tc.want, handler.IsDataStar(r))
		})
	}
}
