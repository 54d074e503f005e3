package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/cardless-trial/modules/dashboard"
	"github.com/dmitrymomot/cardless-trial/pkg/billing"
)

// NewDashboardViews builds the component set for the dashboard module.
func NewDashboardViews(cfg Config) *dashboard.Views {
	return &dashboard.Views{
		Page: func(p dashboard.PageParams) templ.Component {
			return layout(cfg, "Dashboard", func(w io.Writer) error {
				return dashboardPage(w, p)
			})
		},
		StatusCard: func(p dashboard.PageParams) templ.Component {
			return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
				return statusSection(w, p)
			})
		},
		Checkout: func(p dashboard.CheckoutParams) templ.Component {
			return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
				return checkoutLauncher(w, p)
			})
		},
		Alert: func(p dashboard.AlertParams) templ.Component {
			return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
				if _, err := io.WriteString(w, `<div id="dashboard-alert">`); err != nil {
					return err
				}
				if err := alert(w, p.Message); err != nil {
					return err
				}
				_, err := io.WriteString(w, "</div>\n")
				return err
			})
		},
	}
}

func dashboardPage(w io.Writer, p dashboard.PageParams) error {
	if !p.HasSubscription {
		_, err := io.WriteString(w, `<article>
<header><strong>No subscription found</strong></header>
<p>You don't have an active subscription yet.</p>
<footer><a href="/" role="button">View pricing plans</a></footer>
</article>
`)
		return err
	}

	if _, err := io.WriteString(w, `<hgroup>
<h1>Dashboard</h1>
<p>Manage your subscription and billing</p>
</hgroup>
<div id="dashboard-alert"></div>
`); err != nil {
		return err
	}
	if err := statusSection(w, p); err != nil {
		return err
	}
	_, err := io.WriteString(w, `<div id="checkout-launcher"></div>
<p><a href="/">Back to pricing</a></p>
`)
	return err
}

func statusSection(w io.Writer, p dashboard.PageParams) error {
	if _, err := io.WriteString(w, `<section id="subscription-section">`+"\n"); err != nil {
		return err
	}
	if p.Error != "" {
		if err := alert(w, p.Error); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</section>\n")
		return err
	}

	if _, err := fmt.Fprintf(w, `<article>
<header><strong>Subscription status</strong></header>
<p>Status: <mark>%s</mark></p>
<p>Subscription ID: <code>%s</code></p>
`,
		templ.EscapeString(p.Label.Text),
		templ.EscapeString(p.Subscription.ID),
	); err != nil {
		return err
	}

	if period := p.Subscription.CurrentBillingPeriod; period != nil {
		if _, err := fmt.Fprintf(w, "<p>Trial period: %s to %s</p>\n",
			period.StartsAt.Format("Jan 2, 2006"), period.EndsAt.Format("Jan 2, 2006")); err != nil {
			return err
		}
	}
	if p.Subscription.NextBilledAt != nil {
		if _, err := fmt.Fprintf(w, "<p>Next billing date: %s</p>\n",
			p.Subscription.NextBilledAt.Format("Jan 2, 2006")); err != nil {
			return err
		}
	}

	if p.IsCardless {
		if _, err := io.WriteString(w, `<p role="alert">You're currently on a free trial. Add a payment method to ensure uninterrupted access when your trial ends.</p>
<button data-on-click="@post('/dashboard/payment-method')">Add payment method</button>
<button class="secondary" data-on-click="@get('/dashboard/refresh')">Refresh status</button>
<p><small>You won't be charged until your trial period ends. Refresh after adding payment details.</small></p>
`); err != nil {
			return err
		}
	} else if p.Subscription.Status == billing.SubscriptionStatusTrialing {
		if _, err := io.WriteString(w, `<p>Your payment method has been added. You'll be charged automatically when your trial ends.</p>
<button class="secondary" data-on-click="@get('/dashboard/refresh')">Refresh status</button>
`); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "</article>\n</section>\n")
	return err
}

// checkoutLauncher opens the checkout overlay for a payment-method
// transaction. The script executes when datastar patches it into the page.
func checkoutLauncher(w io.Writer, p dashboard.CheckoutParams) error {
	_, err := fmt.Fprintf(w, `<script>
Paddle.Checkout.open({
  transactionId: %q,
  settings: { variant: "one-page" }
});
</script>
`, p.TransactionID)
	return err
}
