// Package dashboard shows the visitor's subscription: its trial state, the
// current billing period, and a checkout trigger for adding a payment method
// to a cardless trial.
package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/cardless-trial/pkg/billing"
	"github.com/dmitrymomot/cardless-trial/pkg/handler"
	"github.com/dmitrymomot/cardless-trial/pkg/logger"
	"github.com/dmitrymomot/cardless-trial/pkg/session"
)

const (
	// StatusTarget is the selector wrapping the subscription status card.
	StatusTarget = "#subscription-section"

	// CheckoutTarget is the selector the checkout launcher is patched into.
	CheckoutTarget = "#checkout-launcher"

	// AlertTarget is the selector for provider error alerts.
	AlertTarget = "#dashboard-alert"
)

// Views holds the components the dashboard module renders.
type Views struct {
	Page       func(PageParams) templ.Component
	StatusCard func(PageParams) templ.Component
	Checkout   func(CheckoutParams) templ.Component
	Alert      func(AlertParams) templ.Component
}

// PageParams carries the subscription state for rendering. Subscription is
// meaningful only when HasSubscription is true and Error is empty.
type PageParams struct {
	HasSubscription bool
	Subscription    billing.Subscription
	Label           billing.StatusLabel
	IsCardless      bool
	Error           string
}

// CheckoutParams opens the provider's checkout widget for the given
// payment-method transaction.
type CheckoutParams struct {
	TransactionID string
}

// AlertParams renders an error alert.
type AlertParams struct {
	Message string
}

// Service handles the dashboard routes.
type Service struct {
	gateway      billing.Gateway
	sessions     *session.Store
	views        *Views
	errorHandler handler.ErrorHandler[handler.Context]
	log          *slog.Logger
}

// NewService creates the dashboard module.
func NewService(
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
		gateway:      gateway,
		sessions:     sessions,
		views:        views,
		errorHandler: errorHandler,
		log:          log,
	}
}

// Handle mounts the dashboard routes.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/", handler.Wrap(s.page,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))

	r.Get("/refresh", handler.Wrap(s.refresh,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))

	r.Post("/payment-method", handler.Wrap(s.paymentMethod,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))

	return r
}

// load resolves the visitor's subscription id and fetches its state.
func (s *Service) load(ctx handler.Context) PageParams {
	subscriptionID, ok := s.sessions.Resolve(ctx.Request())
	if !ok {
		return PageParams{}
	}

	sub, err := s.gateway.GetSubscription(ctx, subscriptionID)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to load subscription",
			logger.Component("dashboard"),
			logger.SubscriptionID(subscriptionID),
			logger.Error(err),
		)
		return PageParams{
			HasSubscription: true,
			Error:           billing.FriendlyMessage(err),
		}
	}

	return PageParams{
		HasSubscription: true,
		Subscription:    sub,
		Label:           billing.SubscriptionStatusLabel(sub),
		IsCardless:      billing.IsCardlessTrial(sub),
	}
}

func (s *Service) page(ctx handler.Context, _ struct{}) handler.Response {
	return handler.Templ(s.views.Page(s.load(ctx)))
}

// refresh re-fetches the subscription and patches the status card in place,
// used after the customer adds a payment method in the checkout overlay.
func (s *Service) refresh(ctx handler.Context, _ struct{}) handler.Response {
	params := s.load(ctx)
	return handler.TemplPartial(
		s.views.StatusCard(params),
		s.views.Page(params),
		handler.WithTarget(StatusTarget),
	)
}

// paymentMethod fetches the zero-value payment-method transaction and
// patches a checkout launcher into the page, which opens the provider's
// overlay with that transaction.
func (s *Service) paymentMethod(ctx handler.Context, _ struct{}) handler.Response {
	subscriptionID, ok := s.sessions.Resolve(ctx.Request())
	if !ok {
		return handler.Templ(
			s.views.Alert(AlertParams{Message: "No subscription found. Start a trial first."}),
			handler.WithTarget(AlertTarget),
		)
	}

	txn, err := s.gateway.PaymentMethodTransaction(ctx, subscriptionID)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to get payment method transaction",
			logger.Component("dashboard"),
			logger.SubscriptionID(subscriptionID),
			logger.Error(err),
		)
		return handler.Templ(
			s.views.Alert(AlertParams{Message: billing.FriendlyMessage(err)}),
			handler.WithTarget(AlertTarget),
		)
	}

	s.log.InfoContext(ctx, "opening payment method checkout",
		logger.Component("dashboard"),
		logger.SubscriptionID(subscriptionID),
		logger.TransactionID(txn.ID),
	)
	return handler.Templ(
		s.views.Checkout(CheckoutParams{TransactionID: txn.ID}),
		handler.WithTarget(CheckoutTarget),
		handler.WithPatchMode(handler.PatchInner),
	)
}
