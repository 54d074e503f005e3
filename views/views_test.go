package views_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cardless-trial/modules/dashboard"
	"github.com/dmitrymomot/cardless-trial/modules/pricing"
	"github.com/dmitrymomot/cardless-trial/modules/signup"
	"github.com/dmitrymomot/cardless-trial/pkg/billing"
	"github.com/dmitrymomot/cardless-trial/pkg/catalog"
	"github.com/dmitrymomot/cardless-trial/views"
)

var testConfig = views.Config{ClientToken: "test_token", Environment: "sandbox"}

func renderComponent(t *testing.T, render func(w *strings.Builder) error) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, render(&sb))
	return sb.String()
}

func TestPricingPage(t *testing.T) {
	t.Parallel()

	cat, err := catalog.Default()
	require.NoError(t, err)

	v := views.NewPricingViews(testConfig)
	out := renderComponent(t, func(sb *strings.Builder) error {
		return v.Page(pricing.PageParams{
			Tiers:     cat.Tiers,
			Countries: cat.Countries,
			Prices:    billing.PriceMap{cat.Tiers[0].PriceID: "$10.00"},
		}).Render(context.Background(), sb)
	})

	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "Paddle.Initialize")
	assert.Contains(t, out, "Paddle.Environment.set(\"sandbox\")")
	assert.Contains(t, out, `id="pricing-grid"`)
	assert.Contains(t, out, "$10.00")
	assert.Contains(t, out, "/signup?priceId="+cat.Tiers[0].PriceID)
}

func TestPricingPage_SubscriberLink(t *testing.T) {
	t.Parallel()

	v := views.NewPricingViews(testConfig)
	out := renderComponent(t, func(sb *strings.Builder) error {
		return v.Page(pricing.PageParams{HasSubscription: true}).Render(context.Background(), sb)
	})

	assert.Contains(t, out, `href="/dashboard"`)
}

func TestLayout_MissingClientToken(t *testing.T) {
	t.Parallel()

	v := views.NewPricingViews(views.Config{})
	out := renderComponent(t, func(sb *strings.Builder) error {
		return v.Page(pricing.PageParams{}).Render(context.Background(), sb)
	})

	assert.NotContains(t, out, "Paddle.Initialize")
	assert.Contains(t, out, "billing client token is missing")
}

func TestSignupForm(t *testing.T) {
	t.Parallel()

	cat, err := catalog.Default()
	require.NoError(t, err)

	v := views.NewSignupViews(testConfig)
	out := renderComponent(t, func(sb *strings.Builder) error {
		return v.Page(signup.PageParams{
			Tier:      cat.Tiers[1],
			Countries: cat.Countries,
			Price:     "$49.00",
		}).Render(context.Background(), sb)
	})

	assert.Contains(t, out, "@post('/signup/trial'")
	assert.Contains(t, out, cat.Tiers[1].PriceID)
	assert.Contains(t, out, "then $49.00 / month")
	assert.Contains(t, out, `id="signup-status"`)
}

func TestSignupFailure_RetryForm(t *testing.T) {
	t.Parallel()

	v := views.NewSignupViews(testConfig)
	out := renderComponent(t, func(sb *strings.Builder) error {
		return v.Failure(signup.FailureParams{
			Message:       "timed out",
			TransactionID: "txn_1",
		}).Render(context.Background(), sb)
	})

	assert.Contains(t, out, "timed out")
	assert.Contains(t, out, "@post('/signup/retry'")
	assert.Contains(t, out, `value="txn_1"`)
}

func TestDashboardStatusCard_Cardless(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 30)

	v := views.NewDashboardViews(testConfig)
	out := renderComponent(t, func(sb *strings.Builder) error {
		return v.StatusCard(dashboard.PageParams{
			HasSubscription: true,
			Subscription: billing.Subscription{
				ID:                   "sub_1",
				Status:               billing.SubscriptionStatusTrialing,
				CurrentBillingPeriod: &billing.BillingPeriod{StartsAt: start, EndsAt: end},
			},
			Label:      billing.StatusLabel{Text: "Trial (cardless)"},
			IsCardless: true,
		}).Render(context.Background(), sb)
	})

	assert.Contains(t, out, "Trial (cardless)")
	assert.Contains(t, out, "sub_1")
	assert.Contains(t, out, "Aug 1, 2026")
	assert.Contains(t, out, "@post('/dashboard/payment-method')")
}

func TestDashboardCheckout_OpensWidget(t *testing.T) {
	t.Parallel()

	v := views.NewDashboardViews(testConfig)
	out := renderComponent(t, func(sb *strings.Builder) error {
		return v.Checkout(dashboard.CheckoutParams{TransactionID: "txn_pm"}).Render(context.Background(), sb)
	})

	assert.Contains(t, out, "Paddle.Checkout.open")
	assert.Contains(t, out, `"txn_pm"`)
	assert.Contains(t, out, `variant: "one-page"`)
}
