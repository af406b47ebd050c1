// Package export renders allocation results for people and for other tools.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/okian/squad/internal/domain/model"
)

// Format selects the rendering.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a user supplied name to a Format. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType returns the HTTP media type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json; charset=utf-8"
	case FormatYAML:
		return "application/yaml; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Ext returns the file extension of f without the dot.
func (f Format) Ext() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "txt"
	}
}

// FileName returns the conventional export file name for a run at t.
func FileName(t time.Time, f Format) string {
	return "squad_teams_" + t.Format("20060102_150405") + "." + f.Ext()
}

// Decorator rewrites one member line of the text rendering.
type Decorator func(p model.Participant, line string) string

// Option configures Render.
type Option func(*renderer)

// WithDecorator applies d to every member line of the text rendering.
func WithDecorator(d Decorator) Option {
	return func(r *renderer) {
		r.decorate = d
	}
}

type renderer struct {
	decorate Decorator
}

// Render writes res to w in format f.
func Render(w io.Writer, res model.Result, f Format, opts ...Option) error {
	r := &renderer{}
	for _, opt := range opts {
		opt(r)
	}

	switch f {
	case FormatText:
		_, err := io.WriteString(w, r.text(res))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

// text renders one block per team:
//
//	Team 1
//	  - Name — ID: 123
func (r *renderer) text(res model.Result) string {
	var b strings.Builder
	for i, t := range res.Teams {
		fmt.Fprintf(&b, "Team %d\n", i+1)
		for _, p := range t.Members {
			line := fmt.Sprintf("  - %s — ID: %s", displayName(p), displayID(p))
			if r.decorate != nil {
				line = r.decorate(p, line)
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	if len(res.Unplaced) > 0 {
		b.WriteString("Unplaced\n")
		for _, p := range res.Unplaced {
			fmt.Fprintf(&b, "  - %s — ID: %s\n", displayName(p), displayID(p))
		}
	}
	return b.String()
}

func displayName(p model.Participant) string {
	if s := SanitizeName(p.DisplayName); s != "" {
		return s
	}
	return "Unknown"
}

func displayID(p model.Participant) string {
	if p.ID == "" {
		return "UnknownID"
	}
	return p.ID
}

var (
	parenthesized = regexp.MustCompile(`\([^)]*\)`)
	disallowed    = regexp.MustCompile(`[!@#$%^&*()?/><'";:\[\]{}\\|=+\-]`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// SanitizeName strips parenthesised text, anything after the first '/',
// and punctuation that breaks chat mentions, then collapses whitespace.
func SanitizeName(name string) string {
	name = parenthesized.ReplaceAllString(name, "")
	name, _, _ = strings.Cut(name, "/")
	name = disallowed.ReplaceAllString(name, "")
	return strings.TrimSpace(whitespace.ReplaceAllString(name, " "))
}
