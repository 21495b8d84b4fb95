// Package tmpl renders the text/template strings used for backend endpoints.
package tmpl

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"text/template"
)

var funcs = template.FuncMap{
	"q":     url.QueryEscape,
	"path":  url.PathEscape,
	"lower": strings.ToLower,
	"upper": strings.ToUpper,
}

// Parse compiles a template with the package functions and strict key lookup.
func Parse(tmpl string) (*template.Template, error) {
	t, err := template.New("").Funcs(funcs).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	return t, nil
}

// Render executes a Go template string with the given data.
// Returns an error if the template is invalid or references undefined keys.
//
// Available template functions:
//   - q: query-escape a value for use in a URL query string
//   - path: escape a value for use as a URL path segment
//   - lower, upper: change case
func Render(tmpl string, data any) (string, error) {
	t, err := Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
