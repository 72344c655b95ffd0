// Package output renders results as CSV, JSON, YAML, TOON, Markdown or
// aligned text tables.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	toon "github.com/toon-format/toon-go"
	"gopkg.in/yaml.v3"
)

// Format represents an output format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatTOON     Format = "toon"
	FormatMarkdown Format = "markdown"
)

var formatAliases = map[string]Format{
	"":         FormatCSV,
	"csv":      FormatCSV,
	"json":     FormatJSON,
	"yaml":     FormatYAML,
	"yml":      FormatYAML,
	"toon":     FormatTOON,
	"markdown": FormatMarkdown,
	"md":       FormatMarkdown,
	"text":     FormatText,
}

// ParseFormat maps a format name or alias to a Format. The empty string
// selects CSV; unknown names select text.
func ParseFormat(s string) Format {
	if f, ok := formatAliases[strings.ToLower(s)]; ok {
		return f
	}
	return FormatText
}

// Renderable is data with its own text and Markdown layout.
type Renderable interface {
	RenderText(w io.Writer, colored bool) error
	RenderMarkdown(w io.Writer) error
	// RenderData is what JSON, YAML and TOON serialize.
	RenderData() any
}

// CSVRenderable is implemented by renderables with a tabular CSV form.
// Others fall back to JSON when CSV is requested.
type CSVRenderable interface {
	RenderCSV(w io.Writer) error
}

// encoders serialize plain data for the structured formats.
var encoders = map[Format]func(io.Writer, any) error{
	FormatJSON: encodeJSON,
	FormatYAML: encodeYAML,
	FormatTOON: encodeTOON,
}

func encodeJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func encodeYAML(w io.Writer, data any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

func encodeTOON(w io.Writer, data any) error {
	out, err := toon.Marshal(data, toon.WithIndent(2))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// Formatter writes results to stdout or a file in one format.
type Formatter struct {
	format  Format
	writer  io.Writer
	file    *os.File
	colored bool
}

// NewFormatter writes to path, or to stdout when path is empty. File output
// is never colored.
func NewFormatter(format Format, path string, colored bool) (*Formatter, error) {
	f := &Formatter{format: format, writer: os.Stdout, colored: colored}
	if path == "" {
		return f, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	f.writer, f.file, f.colored = file, file, false
	return f, nil
}

// Close closes the output file, if any.
func (f *Formatter) Close() error {
	if f.file == nil {
		return nil
	}
	return f.file.Close()
}

func (f *Formatter) Writer() io.Writer { return f.writer }
func (f *Formatter) Format() Format    { return f.format }
func (f *Formatter) Colored() bool     { return f.colored }

// Output writes data in the configured format.
func (f *Formatter) Output(data any) error {
	r, ok := data.(Renderable)
	if !ok {
		return f.outputRaw(data)
	}

	if encode, ok := encoders[f.format]; ok {
		return encode(f.writer, r.RenderData())
	}
	switch f.format {
	case FormatCSV:
		if c, ok := r.(CSVRenderable); ok {
			return c.RenderCSV(f.writer)
		}
		return encodeJSON(f.writer, r.RenderData())
	case FormatMarkdown:
		return r.RenderMarkdown(f.writer)
	default:
		return r.RenderText(f.writer, f.colored)
	}
}

// outputRaw serializes data that has no layout of its own. Markdown wraps
// JSON in a fenced block; CSV and text fall back to JSON.
func (f *Formatter) outputRaw(data any) error {
	if encode, ok := encoders[f.format]; ok {
		return encode(f.writer, data)
	}
	if f.format != FormatMarkdown {
		return encodeJSON(f.writer, data)
	}
	fmt.Fprintln(f.writer, "```json")
	if err := encodeJSON(f.writer, data); err != nil {
		return err
	}
	fmt.Fprintln(f.writer, "```")
	return nil
}

func (f *Formatter) say(prefix string, paint func(string, ...any) string, format string, args []any) {
	if f.colored {
		fmt.Fprintln(f.writer, paint(format, args...))
		return
	}
	fmt.Fprintln(f.writer, prefix+fmt.Sprintf(format, args...))
}

func (f *Formatter) Success(format string, args ...any) {
	f.say("", color.GreenString, format, args)
}

func (f *Formatter) Warning(format string, args ...any) {
	f.say("WARNING: ", color.YellowString, format, args)
}

func (f *Formatter) Error(format string, args ...any) {
	f.say("ERROR: ", color.RedString, format, args)
}

func (f *Formatter) Info(format string, args ...any) {
	f.say("", color.CyanString, format, args)
}

// ScoreColor colors a similarity score by band: red from 0.8, yellow from 0.5.
func ScoreColor(score float64, text string) string {
	switch {
	case score >= 0.8:
		return color.RedString(text)
	case score >= 0.5:
		return color.YellowString(text)
	default:
		return text
	}
}

// FlagColor colors a raised outlier flag.
func FlagColor(text string) string {
	if text == "true" {
		return color.MagentaString(text)
	}
	return text
}
