// Package pricing serves the public pricing page with localized price
// previews fetched from the payment provider.
package pricing

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/cardless-trial/pkg/billing"
	"github.com/dmitrymomot/cardless-trial/pkg/binder"
	"github.com/dmitrymomot/cardless-trial/pkg/catalog"
	"github.com/dmitrymomot/cardless-trial/pkg/handler"
	"github.com/dmitrymomot/cardless-trial/pkg/logger"
	"github.com/dmitrymomot/cardless-trial/pkg/session"
)

// Views holds the components the pricing module renders. The page is the
// full document; the grid is the tier list patched in place when the
// visitor switches country.
type Views struct {
	Page func(PageParams) templ.Component
	Grid func(PageParams) templ.Component
}

// PageParams carries everything the pricing views need. HasSubscription
// switches on the link back to the dashboard for returning visitors.
type PageParams struct {
	Tiers           []catalog.Tier
	Prices          billing.PriceMap
	Countries       []catalog.Country
	SelectedCountry string
	PreviewError    string
	HasSubscription bool
}

// Service renders the pricing page.
type Service struct {
	catalog      *catalog.Catalog
	gateway      billing.Gateway
	sessions     *session.Store
	views        *Views
	errorHandler handler.ErrorHandler[handler.Context]
	log          *slog.Logger
}

// NewService creates the pricing module.
func NewService(
	cat *catalog.Catalog,
	gateway billing.Gateway,
	sessions *session.Store,
	views *Views,
	errorHandler handler.ErrorHandler[handler.Context],
	log *slog.Logger,
) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		catalog:      cat,
		gateway:      gateway,
		sessions:     sessions,
		views:        views,
		errorHandler: errorHandler,
		log:          log,
	}
}

// Handle mounts the pricing routes.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/", handler.Wrap(s.page,
		handler.WithBinders[handler.Context, PageRequest](binder.Query()),
		handler.WithErrorHandler[handler.Context, PageRequest](s.errorHandler),
	))

	return r
}

// PageRequest selects the country used for price localization. Without it
// the provider localizes by caller IP.
type PageRequest struct {
	Country string `query:"country"`
}

func (s *Service) page(ctx handler.Context, req PageRequest) handler.Response {
	country := req.Country
	if country != "" && !s.catalog.SupportsCountry(country) {
		country = ""
	}

	_, hasSubscription := s.sessions.Get(ctx.Request())

	params := PageParams{
		Tiers:           s.catalog.Tiers,
		Countries:       s.catalog.Countries,
		SelectedCountry: country,
		HasSubscription: hasSubscription,
	}

	prices, err := s.gateway.PreviewPrices(ctx, s.catalog.PriceIDs(), country)
	if err != nil {
		s.log.ErrorContext(ctx, "price preview failed",
			logger.Component("pricing"),
			logger.Error(err),
			slog.String("country", country),
		)
		params.Prices = billing.PriceMap{}
		params.PreviewError = billing.FriendlyMessage(err)
	} else {
		params.Prices = prices
	}

	return handler.TemplPartial(
		s.views.Grid(params),
		s.views.Page(params),
		handler.WithTarget("#pricing-grid"),
	)
}
