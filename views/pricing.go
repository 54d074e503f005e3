package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/cardless-trial/modules/pricing"
)

// NewPricingViews builds the component set for the pricing module.
func NewPricingViews(cfg Config) *pricing.Views {
	return &pricing.Views{
		Page: func(p pricing.PageParams) templ.Component {
			return layout(cfg, "Pricing", func(w io.Writer) error {
				if err := pricingHeader(w, p); err != nil {
					return err
				}
				return pricingGrid(w, p)
			})
		},
		Grid: func(p pricing.PageParams) templ.Component {
			return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
				return pricingGrid(w, p)
			})
		},
	}
}

func pricingHeader(w io.Writer, p pricing.PageParams) error {
	if _, err := io.WriteString(w, `<hgroup>
<h1>Simple pricing, free to start</h1>
<p>Every plan begins with a 30-day free trial. No card required.</p>
</hgroup>
<form>
<label for="country">Show prices for
<select id="country" name="country" data-on-change="@get('/?country=' + el.value)">
<option value="">Detect from my location</option>
`); err != nil {
		return err
	}
	for _, country := range p.Countries {
		selected := ""
		if country.Code == p.SelectedCountry {
			selected = " selected"
		}
		if _, err := fmt.Fprintf(w, "<option value=\"%s\"%s>%s</option>\n",
			templ.EscapeString(country.Code), selected, templ.EscapeString(country.Name)); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "</select>\n</label>\n</form>\n"); err != nil {
		return err
	}
	if p.HasSubscription {
		if _, err := io.WriteString(w, `<p>Already signed up? <a href="/dashboard">View your subscription</a></p>`+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func pricingGrid(w io.Writer, p pricing.PageParams) error {
	if _, err := io.WriteString(w, `<div id="pricing-grid" class="grid">`+"\n"); err != nil {
		return err
	}
	if p.PreviewError != "" {
		if err := alert(w, p.PreviewError); err != nil {
			return err
		}
	}
	for _, tier := range p.Tiers {
		badge := ""
		if tier.Featured {
			badge = `<mark>Most popular</mark> `
		}
		if _, err := fmt.Fprintf(w, `<article>
<header>%s<strong>%s</strong></header>
<p>%s</p>
<h3>%s<small> / month</small></h3>
<ul>
`,
			badge,
			templ.EscapeString(tier.Name),
			templ.EscapeString(tier.Description),
			templ.EscapeString(p.Prices.Total(tier.PriceID)),
		); err != nil {
			return err
		}
		for _, feature := range tier.Features {
			if _, err := fmt.Fprintf(w, "<li>%s</li>\n", templ.EscapeString(feature)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, `</ul>
<footer><a href="/signup?priceId=%s" role="button">Start free trial</a></footer>
</article>
`, templ.EscapeString(tier.PriceID)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</div>\n")
	return err
}
