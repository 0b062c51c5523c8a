package datamap

import (
	"bytes"
	"encoding/json"
	"html"
	"html/template"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"choromap/internal/config"
)

// popups compiles popup templates once per source. Failures are logged to
// the owning map's logger.
type popups struct {
	mu    sync.Mutex
	cache map[string]*template.Template
	log   *zerolog.Logger
}

func newPopups(log *zerolog.Logger) *popups {
	return &popups{cache: map[string]*template.Template{}, log: log}
}

var funcs = template.FuncMap{
	"json": func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	},
}

func (p *popups) template(src string) (*template.Template, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.cache[src]; ok {
		return t, nil
	}
	t, err := template.New("popup").Funcs(funcs).Option("missingkey=zero").Parse(src)
	if err != nil {
		return nil, err
	}
	p.cache[src] = t
	return t, nil
}

// render produces popup HTML. A custom function wins over the template.
// Any failure yields an empty popup.
func (p *popups) render(fn config.PopupFunc, src string, ctx config.PopupContext) (out string) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Debug().Interface("panic", r).Msg("popup function failed")
			out = ""
		}
	}()
	if fn != nil {
		return fn(ctx)
	}
	if src == "" {
		return ""
	}
	t, err := p.template(src)
	if err != nil {
		p.log.Debug().Err(err).Msg("popup template does not parse")
		return ""
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, ctx); err != nil {
		return ""
	}
	return buf.String()
}

var (
	tags   = regexp.MustCompile(`<[^>]*>`)
	spaces = regexp.MustCompile(`\s+`)
)

// plainText strips markup from popup HTML for text-only targets.
func plainText(s string) string {
	s = tags.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}
