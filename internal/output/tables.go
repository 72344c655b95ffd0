package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Table is a titled grid of string cells. Data, when set, replaces the
// cells in structured output so numbers and lists keep their types.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Footer  []string
	Data    any

	// Highlight decorates a cell in colored text output.
	Highlight func(col int, cell string) string
}

// NewTable builds a table without highlighting.
func NewTable(title string, headers []string, rows [][]string, footer []string, data any) *Table {
	return &Table{Title: title, Headers: headers, Rows: rows, Footer: footer, Data: data}
}

func (t *Table) RenderData() any {
	if t.Data != nil {
		return t.Data
	}
	records := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Headers))
		for i, cell := range row {
			if i < len(t.Headers) {
				rec[t.Headers[i]] = cell
			}
		}
		records = append(records, rec)
	}
	return records
}

// RenderCSV writes the header and rows. The footer is a text summary and
// is left out.
func (t *Table) RenderCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

func (t *Table) RenderText(w io.Writer, colored bool) error {
	writeHeading(w, t.Title, colored)

	grid := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignLeft}},
			Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignLeft}},
			Footer: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignLeft}},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders:  tw.Border{Left: tw.Off, Right: tw.Off, Top: tw.Off, Bottom: tw.Off},
			Settings: tw.Settings{Separators: tw.Separators{BetweenColumns: tw.Off}},
		}),
	)
	grid.Header(toAny(t.Headers)...)
	for _, row := range t.Rows {
		if err := grid.Append(t.decorate(row, colored)); err != nil {
			return err
		}
	}
	if len(t.Footer) > 0 {
		grid.Footer(toAny(t.Footer)...)
	}
	if err := grid.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

func (t *Table) decorate(row []string, colored bool) []string {
	if !colored || t.Highlight == nil {
		return row
	}
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = t.Highlight(i, cell)
	}
	return out
}

func (t *Table) RenderMarkdown(w io.Writer) error {
	if t.Title != "" {
		fmt.Fprintf(w, "## %s\n\n", t.Title)
	}
	mdRow := func(cells []string) {
		fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
	}

	mdRow(t.Headers)
	rule := make([]string, len(t.Headers))
	for i := range rule {
		rule[i] = "---"
	}
	mdRow(rule)
	for _, row := range t.Rows {
		mdRow(row)
	}
	if len(t.Footer) > 0 {
		mdRow(t.Footer)
	}
	_, err := fmt.Fprintln(w)
	return err
}

// Section is a titled block of preformatted text.
type Section struct {
	Title   string
	Content string
	Data    any
}

func (s *Section) RenderData() any {
	if s.Data != nil {
		return s.Data
	}
	return map[string]string{"title": s.Title, "content": s.Content}
}

func (s *Section) RenderText(w io.Writer, colored bool) error {
	writeHeading(w, s.Title, colored)
	if s.Content == "" {
		return nil
	}
	_, err := fmt.Fprintf(w, "%s\n\n", s.Content)
	return err
}

func (s *Section) RenderMarkdown(w io.Writer) error {
	if s.Title != "" {
		fmt.Fprintf(w, "## %s\n\n", s.Title)
	}
	if s.Content == "" {
		return nil
	}
	_, err := fmt.Fprintf(w, "```\n%s\n```\n\n", s.Content)
	return err
}

// Report renders its parts in order. Structured formats serialize Data
// only.
type Report struct {
	Sections []Renderable
	Data     any
}

func (r *Report) RenderData() any {
	if r.Data != nil {
		return r.Data
	}
	parts := make([]any, 0, len(r.Sections))
	for _, s := range r.Sections {
		parts = append(parts, s.RenderData())
	}
	return parts
}

func (r *Report) RenderText(w io.Writer, colored bool) error {
	for _, s := range r.Sections {
		if err := s.RenderText(w, colored); err != nil {
			return err
		}
	}
	return nil
}

func (r *Report) RenderMarkdown(w io.Writer) error {
	for _, s := range r.Sections {
		if err := s.RenderMarkdown(w); err != nil {
			return err
		}
	}
	return nil
}

func writeHeading(w io.Writer, title string, colored bool) {
	if title == "" {
		return
	}
	underline := strings.Repeat("=", len(title))
	if colored {
		title = color.New(color.Bold).Sprint(title)
	}
	fmt.Fprintf(w, "%s\n%s\n\n", title, underline)
}

func toAny(cells []string) []any {
	out := make([]any, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}
