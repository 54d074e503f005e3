package views

import (
	"fmt"
	"io"

	"github.com/a-h/templ"
)

func alert(w io.Writer, message string) error {
	_, err := fmt.Fprintf(w, `<p role="alert"><mark>%s</mark></p>`+"\n", templ.EscapeString(message))
	return err
}
