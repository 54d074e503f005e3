// Package signup runs the cardless trial signup: a form collecting email,
// country, and postal code, and a streaming endpoint that provisions the
// trial while pushing progress updates to the page.
package signup

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/cardless-trial/pkg/billing"
	"github.com/dmitrymomot/cardless-trial/pkg/binder"
	"github.com/dmitrymomot/cardless-trial/pkg/catalog"
	"github.com/dmitrymomot/cardless-trial/pkg/handler"
	"github.com/dmitrymomot/cardless-trial/pkg/logger"
	"github.com/dmitrymomot/cardless-trial/pkg/session"
	"github.com/dmitrymomot/cardless-trial/pkg/trial"
	"github.com/dmitrymomot/cardless-trial/pkg/validator"
)

// StatusTarget is the selector progress and outcome components are patched
// into while provisioning runs.
const StatusTarget = "#signup-status"

// Views holds the components the signup module renders.
type Views struct {
	Page     func(PageParams) templ.Component
	Progress func(ProgressParams) templ.Component
	Failure  func(FailureParams) templ.Component
}

// PageParams renders the signup form for a selected tier. Price is the
// localized monthly total, empty when the preview is unavailable.
type PageParams struct {
	Tier      catalog.Tier
	Countries []catalog.Country
	Price     string
}

// ProgressParams renders the provisioning progress indicator.
type ProgressParams struct {
	State   trial.State
	Attempt int
	Total   int
}

// FailureParams renders the provisioning error alert. TransactionID is set
// when the transaction exists and polling can be retried without creating
// duplicate records.
type FailureParams struct {
	Message       string
	TransactionID string
}

// Service handles trial signups.
type Service struct {
	catalog         *catalog.Catalog
	gateway         billing.Gateway
	sessions        *session.Store
	views           *Views
	errorHandler    handler.ErrorHandler[handler.Context]
	log             *slog.Logger
	pollInterval    time.Duration
	maxPollAttempts int
}

// Option tunes the provisioning poll loop.
type Option func(*Service)

// WithPollInterval sets the delay between transaction polls.
func WithPollInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithMaxPollAttempts sets the poll attempt budget.
func WithMaxPollAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPollAttempts = n
		}
	}
}

// NewService creates the signup module.
func NewService(
	cat *catalog.Catalog,
	gateway billing.Gateway,
	sessions *session.Store,
	views *Views,
	errorHandler handler.ErrorHandler[handler.Context],
	log *slog.Logger,
	opts ...Option,
) *Service {
	if log == nil {
		log = slog.Default()
	}
	s := &Service{
		catalog:         cat,
		gateway:         gateway,
		sessions:        sessions,
		views:           views,
		errorHandler:    errorHandler,
		log:             log,
		pollInterval:    5 * time.Second,
		maxPollAttempts: 5,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle mounts the signup routes.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/", handler.Wrap(s.page,
		handler.WithBinders[handler.Context, PageRequest](binder.Query()),
		handler.WithErrorHandler[handler.Context, PageRequest](s.errorHandler),
	))

	r.Post("/trial", handler.Wrap(s.startTrial,
		handler.WithBinders[handler.Context, StartRequest](binder.Form()),
		handler.WithErrorHandler[handler.Context, StartRequest](s.errorHandler),
	))

	r.Post("/retry", handler.Wrap(s.retryTrial,
		handler.WithBinders[handler.Context, RetryRequest](binder.Form()),
		handler.WithErrorHandler[handler.Context, RetryRequest](s.errorHandler),
	))

	r.Get("/complete", handler.Wrap(s.complete,
		handler.WithBinders[handler.Context, CompleteRequest](binder.Query()),
		handler.WithErrorHandler[handler.Context, CompleteRequest](s.errorHandler),
	))

	return r
}

// PageRequest selects the tier being signed up for.
type PageRequest struct {
	PriceID string `query:"priceId"`
}

func (s *Service) page(ctx handler.Context, req PageRequest) handler.Response {
	tier, ok := s.catalog.TierByPriceID(req.PriceID)
	if !ok {
		// Unknown or missing price id: back to the pricing page.
		return handler.Redirect("/")
	}

	params := PageParams{
		Tier:      tier,
		Countries: s.catalog.Countries,
	}
	prices, err := s.gateway.PreviewPrices(ctx, []string{tier.PriceID}, "")
	if err != nil {
		// The form works without a price, so only log the failure.
		s.log.ErrorContext(ctx, "price preview failed",
			logger.Component("signup"),
			logger.Error(err),
			logger.PriceID(tier.PriceID),
		)
	} else if price, ok := prices[tier.PriceID]; ok {
		params.Price = price
	}

	return handler.Templ(s.views.Page(params))
}

// StartRequest carries the signup form fields.
type StartRequest struct {
	PriceID     string `form:"price_id"`
	Email       string `form:"email"`
	CountryCode string `form:"country_code"`
	PostalCode  string `form:"postal_code"`
}

func (s *Service) validateStart(req StartRequest) error {
	_, knownPrice := s.catalog.TierByPriceID(req.PriceID)
	return validator.Apply(
		validator.Rule{Check: func() bool { return knownPrice }, Error: validator.ValidationError{
			Field: "price_id", Message: "unknown plan",
		}},
		validator.Required("email", req.Email),
		validator.ValidEmail("email", req.Email),
		validator.OneOf("country_code", req.CountryCode, s.catalog.CountryCodes()),
		validator.Required("postal_code", req.PostalCode),
		validator.MaxLen("postal_code", req.PostalCode, 20),
	)
}

func (s *Service) startTrial(ctx handler.Context, req StartRequest) handler.Response {
	if err := s.validateStart(req); err != nil {
		return handler.Templ(
			s.views.Failure(FailureParams{Message: err.Error()}),
			handler.WithTarget(StatusTarget),
		)
	}

	return handler.SSE(func(stream handler.StreamContext) error {
		flow := trial.New(s.gateway,
			trial.WithLogger(s.log),
			trial.WithPollInterval(s.pollInterval),
			trial.WithMaxPollAttempts(s.maxPollAttempts),
			trial.WithNotify(s.streamProgress(stream)),
		)

		result, err := flow.Start(stream, trial.StartParams{
			Email:       req.Email,
			CountryCode: req.CountryCode,
			PostalCode:  req.PostalCode,
			PriceID:     req.PriceID,
		})
		return s.finish(stream, result, err)
	})
}

// RetryRequest resumes polling a transaction from a timed-out signup.
type RetryRequest struct {
	TransactionID string `form:"transaction_id"`
}

func (s *Service) retryTrial(ctx handler.Context, req RetryRequest) handler.Response {
	return handler.SSE(func(stream handler.StreamContext) error {
		flow := trial.New(s.gateway,
			trial.WithLogger(s.log),
			trial.WithPollInterval(s.pollInterval),
			trial.WithMaxPollAttempts(s.maxPollAttempts),
			trial.WithNotify(s.streamProgress(stream)),
		)

		result, err := flow.Resume(stream, req.TransactionID)
		return s.finish(stream, result, err)
	})
}

// streamProgress pushes a progress patch for every flow state change.
// Terminal states are rendered by finish, which knows the full outcome.
func (s *Service) streamProgress(stream handler.StreamContext) func(trial.Update) {
	return func(u trial.Update) {
		if u.State != trial.StateCreating && u.State != trial.StatePolling {
			return
		}
		_ = stream.SendComponent(
			s.views.Progress(ProgressParams{
				State:   u.State,
				Attempt: u.Attempt,
				Total:   s.maxPollAttempts,
			}),
			handler.WithTarget(StatusTarget),
		)
	}
}

// finish renders the outcome of a provisioning run. On success the browser
// is sent to the completion route, which persists the subscription id in a
// cookie; cookies cannot be set here because SSE headers are already out.
func (s *Service) finish(stream handler.StreamContext, result trial.Result, err error) error {
	if err == nil {
		return stream.SendRedirect("/signup/complete?sub=" + url.QueryEscape(result.SubscriptionID))
	}

	params := FailureParams{Message: billing.FriendlyMessage(err)}
	if errors.Is(err, trial.ErrPollTimeout) {
		params.Message = "Your trial is taking longer than expected to set up. You can retry without being charged twice."
		params.TransactionID = result.TransactionID
	}
	return stream.SendComponent(
		s.views.Failure(params),
		handler.WithTarget(StatusTarget),
	)
}

// CompleteRequest persists a provisioned subscription id.
type CompleteRequest struct {
	SubscriptionID string `query:"sub"`
}

func (s *Service) complete(ctx handler.Context, req CompleteRequest) handler.Response {
	if req.SubscriptionID == "" {
		return handler.Redirect("/")
	}

	s.sessions.Set(ctx.ResponseWriter(), req.SubscriptionID)
	s.log.InfoContext(ctx, "trial signup completed",
		logger.Component("signup"),
		logger.SubscriptionID(req.SubscriptionID),
	)
	return handler.Redirect("/dashboard")
}
