package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/cardless-trial/modules/signup"
	"github.com/dmitrymomot/cardless-trial/pkg/trial"
)

// NewSignupViews builds the component set for the signup module.
func NewSignupViews(cfg Config) *signup.Views {
	return &signup.Views{
		Page: func(p signup.PageParams) templ.Component {
			return layout(cfg, "Start your free trial", func(w io.Writer) error {
				return signupForm(w, p)
			})
		},
		Progress: func(p signup.ProgressParams) templ.Component {
			return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
				return signupProgress(w, p)
			})
		},
		Failure: func(p signup.FailureParams) templ.Component {
			return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
				return signupFailure(w, p)
			})
		},
	}
}

func signupForm(w io.Writer, p signup.PageParams) error {
	if _, err := fmt.Fprintf(w, `<hgroup>
<h1>Start your %s trial</h1>
<p>30 days free%s. No payment method needed until your trial ends.</p>
</hgroup>
<form data-on-submit="@post('/signup/trial', {contentType: 'form'})">
<input type="hidden" name="price_id" value="%s">
<label>Email
<input type="email" name="email" placeholder="you@example.com" required>
</label>
<label>Country
<select name="country_code" required>
`,
		templ.EscapeString(p.Tier.Name),
		priceSuffix(p.Price),
		templ.EscapeString(p.Tier.PriceID),
	); err != nil {
		return err
	}
	for _, country := range p.Countries {
		if _, err := fmt.Fprintf(w, "<option value=\"%s\">%s</option>\n",
			templ.EscapeString(country.Code), templ.EscapeString(country.Name)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</select>
</label>
<label>Postal code
<input type="text" name="postal_code" placeholder="94107" required>
</label>
<button type="submit">Start free trial</button>
</form>
<div id="signup-status"></div>
<p><a href="/">Back to pricing</a></p>
`)
	return err
}

func priceSuffix(price string) string {
	if price == "" {
		return ""
	}
	return ", then " + templ.EscapeString(price) + " / month"
}

func signupProgress(w io.Writer, p signup.ProgressParams) error {
	message := "Creating your account..."
	if p.State == trial.StatePolling {
		message = fmt.Sprintf("Setting up your trial (%d/%d)...", p.Attempt, p.Total)
	}
	_, err := fmt.Fprintf(w, `<div id="signup-status"><progress></progress><p>%s</p></div>`+"\n",
		templ.EscapeString(message))
	return err
}

func signupFailure(w io.Writer, p signup.FailureParams) error {
	if _, err := fmt.Fprintf(w, `<div id="signup-status"><p role="alert"><mark>%s</mark></p>`+"\n",
		templ.EscapeString(p.Message)); err != nil {
		return err
	}
	if p.TransactionID != "" {
		if _, err := fmt.Fprintf(w, `<form data-on-submit="@post('/signup/retry', {contentType: 'form'})">
<input type="hidden" name="transaction_id" value="%s">
<button type="submit" class="secondary">Retry</button>
</form>
`, templ.EscapeString(p.TransactionID)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</div>\n")
	return err
}
