package pricing_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cardless-trial/modules/pricing"
	"github.com/dmitrymomot/cardless-trial/pkg/billing"
	"github.com/dmitrymomot/cardless-trial/pkg/catalog"
	"github.com/dmitrymomot/cardless-trial/pkg/cookie"
	"github.com/dmitrymomot/cardless-trial/pkg/session"
)

type fakeGateway struct {
	billing.Gateway

	prices     billing.PriceMap
	previewErr error

	gotPriceIDs []string
	gotCountry  string
}

func (g *fakeGateway) PreviewPrices(ctx context.Context, priceIDs []string, countryCode string) (billing.PriceMap, error) {
	g.gotPriceIDs = priceIDs
	g.gotCountry = countryCode
	if g.previewErr != nil {
		return nil, g.previewErr
	}
	return g.prices, nil
}

func testViews() *pricing.Views {
	render := func(kind string) func(pricing.PageParams) templ.Component {
		return func(p pricing.PageParams) templ.Component {
			return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s country=%s err=%s total=%s",
					kind, p.SelectedCountry, p.PreviewError, p.Prices.Total("pri_01k5c14mgh9dc3wgk3vb23p0t7"))
				return err
			})
		}
	}
	return &pricing.Views{
		Page: render("page"),
		Grid: render("grid"),
	}
}

func testService(t *testing.T, gw *fakeGateway) http.Handler {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	cookies, err := cookie.New([]string{"0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return pricing.NewService(cat, gw, session.NewStore(cookies), testViews(), nil, log).Handle()
}

func TestPage(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{prices: billing.PriceMap{"pri_01k5c14mgh9dc3wgk3vb23p0t7": "$49.00"}}
	h := testService(t, gw)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "page")
	assert.Contains(t, w.Body.String(), "total=$49.00")
	assert.Equal(t, 3, len(gw.gotPriceIDs))
	assert.Empty(t, gw.gotCountry)
}

func TestPage_CountrySelection(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{prices: billing.PriceMap{}}
	h := testService(t, gw)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?country=DE", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DE", gw.gotCountry)
	assert.Contains(t, w.Body.String(), "country=DE")
}

func TestPage_UnsupportedCountryIgnored(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{prices: billing.PriceMap{}}
	h := testService(t, gw)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?country=XX", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, gw.gotCountry)
}

func TestPage_ExistingSubscriptionFlagged(t *testing.T) {
	t.Parallel()

	cat, err := catalog.Default()
	require.NoError(t, err)
	cookies, err := cookie.New([]string{"0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)
	sessions := session.NewStore(cookies)

	views := &pricing.Views{
		Page: func(p pricing.PageParams) templ.Component {
			return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
				_, err := fmt.Fprintf(w, "page has_sub=%t", p.HasSubscription)
				return err
			})
		},
		Grid: testViews().Grid,
	}

	gw := &fakeGateway{prices: billing.PriceMap{}}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := pricing.NewService(cat, gw, sessions, views, nil, log).Handle()

	seed := httptest.NewRecorder()
	sessions.Set(seed, "sub_1")

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range seed.Result().Cookies() {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "has_sub=true")
}

func TestPage_PreviewErrorStillRenders(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{previewErr: errors.New("paddle unavailable")}
	h := testService(t, gw)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "err=paddle unavailable")
}

func TestPage_DataStarGetsGridPatch(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{prices: billing.PriceMap{}}
	h := testService(t, gw)

	r := httptest.NewRequest(http.MethodGet, "/?country=SE", nil)
	r.Header.Set("Accept", "text/event-stream")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")
	assert.Contains(t, w.Body.String(), "grid")
	assert.NotContains(t, w.Body.String(), "page country")
}
