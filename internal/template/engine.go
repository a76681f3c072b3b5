package template

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/go-sprout/sprout"
	"github.com/go-sprout/sprout/registry/std"
	sproutstrings "github.com/go-sprout/sprout/registry/strings"
	sprouttime "github.com/go-sprout/sprout/registry/time"
)

// Engine renders text/template strings against a fixed Context.
type Engine struct {
	ctx   *Context
	funcs template.FuncMap
}

// NewEngine creates an Engine for ctx with the sprout std, strings, and time
// registries loaded.
func NewEngine(ctx *Context) (*Engine, error) {
	handler := sprout.New()

	if err := handler.AddRegistries(
		std.NewRegistry(),
		sproutstrings.NewRegistry(),
		sprouttime.NewRegistry(),
	); err != nil {
		return nil, fmt.Errorf("loading template functions: %w", err)
	}

	return &Engine{ctx: ctx, funcs: handler.Build()}, nil
}

// RenderString renders tmplStr. name identifies the template in errors.
// Referencing a missing field is an error.
func (e *Engine) RenderString(name, tmplStr string) (string, error) {
	tmpl, err := template.New(name).
		Option("missingkey=error").
		Funcs(e.funcs).
		Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("parsing template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, e.ctx); err != nil {
		return "", fmt.Errorf("rendering template %s: %w", name, err)
	}

	return buf.String(), nil
}
