// Package renderer formats securities and analytics results as markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/screener"
	"github.com/etnz/screener/analytics"
)

//go:embed templates/*.md
var templates embed.FS

var funcs = template.FuncMap{
	"usd":    func(v float64) string { return screener.USD(v).String() },
	"signed": func(v float64) string { return screener.USD(v).SignedString() },
}

// RenderBacktest renders a backtest result. A nil result renders a notice.
func RenderBacktest(r *analytics.Result) string {
	if r == nil {
		return "No price history available for a backtest.\n"
	}
	return renderTemplate("backtest", "templates/backtest.md", r)
}

// renderTemplate renders the template file with data.
func renderTemplate(name, file string, data any) string {
	content, err := fs.ReadFile(templates, file)
	if err != nil {
		return fmt.Sprintf("error reading template %q: %v", file, err)
	}
	tmpl, err := template.New(name).Funcs(funcs).Parse(string(content))
	if err != nil {
		return fmt.Sprintf("error parsing template %q: %v", file, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", name, err)
	}
	return b.String()
}
