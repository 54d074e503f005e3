package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/cardless-trial/modules/dashboard"
	"github.com/dmitrymomot/cardless-trial/modules/pricing"
	"github.com/dmitrymomot/cardless-trial/modules/signup"
	"github.com/dmitrymomot/cardless-trial/pkg/billing"
	"github.com/dmitrymomot/cardless-trial/pkg/catalog"
	"github.com/dmitrymomot/cardless-trial/pkg/config"
	"github.com/dmitrymomot/cardless-trial/pkg/cookie"
	"github.com/dmitrymomot/cardless-trial/pkg/handler"
	"github.com/dmitrymomot/cardless-trial/pkg/httpserver"
	"github.com/dmitrymomot/cardless-trial/pkg/logger"
	"github.com/dmitrymomot/cardless-trial/pkg/session"
	"github.com/dmitrymomot/cardless-trial/views"
)

type appConfig struct {
	Env string `env:"APP_ENV" envDefault:"development"`
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var (
		appCfg     appConfig
		serverCfg  httpserver.Config
		billingCfg billing.Config
		cookieCfg  cookie.Config
		viewsCfg   views.Config
	)
	for _, err := range []error{
		config.Load(&appCfg),
		config.Load(&serverCfg),
		config.Load(&billingCfg),
		config.Load(&cookieCfg),
		config.Load(&viewsCfg),
	} {
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	log := logger.New(logger.WithEnvironment(appCfg.Env, "cardless-trial"))

	cookies, err := cookie.NewFromConfig(cookieCfg)
	if err != nil {
		return fmt.Errorf("init cookie manager: %w", err)
	}
	sessions := session.NewStore(cookies)

	gateway, err := billing.NewPaddleGateway(billingCfg)
	if err != nil {
		return fmt.Errorf("init billing gateway: %w", err)
	}

	cat, err := catalog.Default()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	errorHandler := newErrorHandler(log)

	pricingSvc := pricing.NewService(cat, gateway, sessions, views.NewPricingViews(viewsCfg), errorHandler, log)
	signupSvc := signup.NewService(cat, gateway, sessions, views.NewSignupViews(viewsCfg), errorHandler, log)
	dashboardSvc := dashboard.NewService(gateway, sessions, views.NewDashboardViews(viewsCfg), errorHandler, log)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", httpserver.HealthCheckHandler(ctx, log))
	r.Mount("/signup", signupSvc.Handle())
	r.Mount("/dashboard", dashboardSvc.Handle())
	r.Mount("/", pricingSvc.Handle())

	srv := httpserver.NewFromConfig(serverCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}

// newErrorHandler logs handler failures and renders client-safe responses.
// Validation and lookup errors carry their own status via HTTPError; anything
// else becomes a 500 without leaking detail.
func newErrorHandler(log *slog.Logger) handler.ErrorHandler[handler.Context] {
	return func(ctx handler.Context, err error) {
		var httpErr handler.HTTPError
		if errors.As(err, &httpErr) {
			log.WarnContext(ctx, "request failed",
				logger.Component("http"),
				logger.Error(err),
				slog.Int("status", httpErr.Code),
			)
			http.Error(ctx.ResponseWriter(), httpErr.Key, httpErr.Code)
			return
		}

		log.ErrorContext(ctx, "request failed",
			logger.Component("http"),
			logger.Error(err),
		)
		http.Error(ctx.ResponseWriter(), billing.GenericErrorMessage, http.StatusInternalServerError)
	}
}
