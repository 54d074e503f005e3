// Package views renders the application's HTML. Components implement
// templ.Component and are injected into the modules, which stay agnostic of
// the markup. The checkout widget script is the only client-side dependency
// besides datastar; everything else renders server-side.
package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

const (
	datastarScriptURL = "https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"
	paddleScriptURL   = "https://cdn.paddle.com/paddle/v2/paddle.js"
	stylesheetURL     = "https://cdn.jsdelivr.net/npm/@picocss/pico@2/css/pico.min.css"
)

// Config carries the publishable settings the browser needs to initialize
// the checkout widget. A missing client token does not stop the server:
// pages render with a persistent banner and the widget stays disabled.
type Config struct {
	ClientToken string `env:"PADDLE_CLIENT_TOKEN"`
	Environment string `env:"PADDLE_ENVIRONMENT" envDefault:"sandbox"`
}

// layout wraps page content in the HTML document shell. Without a client
// token the widget scripts are omitted and every page carries a banner, so
// the server stays usable while checkout is unavailable.
func layout(cfg Config, title string, content func(w io.Writer) error) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<link rel="stylesheet" href="%s">
<script type="module" src="%s"></script>
`,
			templ.EscapeString(title),
			stylesheetURL,
			datastarScriptURL,
		); err != nil {
			return err
		}
		if cfg.ClientToken != "" {
			if _, err := fmt.Fprintf(w, `<script src="%s"></script>
<script>
if (window.Paddle) {
  %sPaddle.Initialize({ token: %q });
}
</script>
`,
				paddleScriptURL,
				paddleEnvSetup(cfg.Environment),
				cfg.ClientToken,
			); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</head>\n<body>\n<main class=\"container\">\n"); err != nil {
			return err
		}
		if cfg.ClientToken == "" {
			if err := alert(w, "Checkout is not configured: the billing client token is missing."); err != nil {
				return err
			}
		}
		if err := content(w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</main>\n</body>\n</html>\n")
		return err
	})
}

func paddleEnvSetup(environment string) string {
	if environment == "sandbox" {
		return "Paddle.Environment.set(\"sandbox\");\n  "
	}
	return ""
}
