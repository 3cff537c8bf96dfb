// Package report renders audit results as text lines or a structured record.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/phobologic/ffiscan/internal/model"
	"github.com/phobologic/ffiscan/internal/toon"
)

// Renderer writes a report to w. The choice of renderer never changes the
// computed values.
type Renderer interface {
	Render(w io.Writer, r model.Report) error
}

// Options tune rendering.
type Options struct {
	// Extended adds derived figures to structured formats. Text ignores it.
	Extended bool
	// Color styles the text classification line when w is a terminal.
	Color bool
}

// Formats lists the supported format names.
var Formats = []string{"text", "json", "yaml", "toon"}

// ForFormat returns the renderer for a format name.
func ForFormat(name string, opts Options) (Renderer, error) {
	switch strings.ToLower(name) {
	case "text", "":
		return Text{Color: opts.Color}, nil
	case "json":
		return JSON{Extended: opts.Extended}, nil
	case "yaml":
		return YAML{Extended: opts.Extended}, nil
	case "toon":
		return TOON{Extended: opts.Extended}, nil
	}
	return nil, fmt.Errorf("unsupported format %q (want one of %s)", name, strings.Join(Formats, ", "))
}

// Text renders the fixed human-readable summary lines.
type Text struct {
	Color bool
}

func (t Text) Render(w io.Writer, r model.Report) error {
	s := r.Stats
	class := string(s.Classification)
	if t.Color {
		class = classificationStyle(lipgloss.NewRenderer(w), s.Classification).Render(class)
	}

	_, err := fmt.Fprintf(w, `Total lines of Rust code: %d
Total extern "C" blocks: %d
Total #[link(...)] attributes: %d
Total #[no_mangle] functions: %d
Maximum Rust file depth: %d
Repository classification: %s
`, s.TotalLines, s.ExternC, s.LinkAttr, s.NoMangle, s.MaxDepth, class)
	return err
}

func classificationStyle(re *lipgloss.Renderer, c model.Classification) lipgloss.Style {
	if c == model.FFIRelated {
		return re.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	}
	return re.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
}

type extendedRecord struct {
	model.RepoStats `yaml:",inline"`
	model.Extras    `yaml:",inline"`
}

func record(r model.Report, extended bool) any {
	if extended {
		return extendedRecord{RepoStats: r.Stats, Extras: r.Extras}
	}
	return r.Stats
}

// JSON renders one indented JSON object.
type JSON struct {
	Extended bool
}

func (j JSON) Render(w io.Writer, r model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(record(r, j.Extended)); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// YAML renders one YAML document.
type YAML struct {
	Extended bool
}

func (y YAML) Render(w io.Writer, r model.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(record(r, y.Extended)); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

// TOON renders the record in Token-Oriented Object Notation.
type TOON struct {
	Extended bool
}

func (t TOON) Render(w io.Writer, r model.Report) error {
	_, err := fmt.Fprintln(w, toon.Encode(r, t.Extended))
	return err
}
