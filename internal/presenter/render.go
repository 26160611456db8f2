package presenter

import (
	"bytes"
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.html
var tmplFS embed.FS

var indexTmpl = template.Must(template.ParseFS(tmplFS, "templates/index.html"))

// Render writes the full page. Nothing is written if the template fails.
func Render(w io.Writer, page Page) error {
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, page); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}
