// Package progress draws per-phase progress bars on stderr.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Option adjusts how a Tracker draws.
type Option func(*settings)

type settings struct {
	out    io.Writer
	silent bool
}

// WithWriter draws to w instead of stderr.
func WithWriter(w io.Writer) Option {
	return func(s *settings) { s.out = w }
}

// Silent suppresses all drawing when quiet is true.
func Silent(quiet bool) Option {
	return func(s *settings) { s.silent = quiet }
}

// Tracker follows one phase of work. Nil and silent trackers accept every
// call and draw nothing.
type Tracker struct {
	label string
	out   io.Writer
	bar   *progressbar.ProgressBar
}

// Start begins a phase of total units. A total <= 0 means the size is not
// known and a spinner is drawn instead of a bar.
func Start(label string, total int, opts ...Option) *Tracker {
	s := settings{out: os.Stderr}
	for _, o := range opts {
		o(&s)
	}
	if s.silent {
		return &Tracker{label: label, out: io.Discard}
	}

	common := []progressbar.Option{
		progressbar.OptionSetWriter(s.out),
		progressbar.OptionSetDescription(label),
		progressbar.OptionClearOnFinish(),
	}
	if total <= 0 {
		bar := progressbar.NewOptions(-1, append(common,
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetWidth(20),
		)...)
		return &Tracker{label: label, out: s.out, bar: bar}
	}

	bar := progressbar.NewOptions(total, append(common,
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer: "=", SaucerHead: ">", SaucerPadding: " ", BarStart: "[", BarEnd: "]",
		}),
	)...)
	return &Tracker{label: label, out: s.out, bar: bar}
}

func (t *Tracker) drawing() bool { return t != nil && t.bar != nil }

// Tick records one finished unit. It is safe for concurrent use.
func (t *Tracker) Tick() {
	if t.drawing() {
		_ = t.bar.Add(1)
	}
}

// Func adapts Tick to a plain callback; nil for a nil tracker.
func (t *Tracker) Func() func() {
	if t == nil {
		return nil
	}
	return t.Tick
}

// Done erases the bar without a trace.
func (t *Tracker) Done() {
	if t.drawing() {
		_ = t.bar.Finish()
		_ = t.bar.Clear()
	}
}

// Skip erases the bar and notes why the phase did no work.
func (t *Tracker) Skip(reason string) {
	t.finish("skipped (" + reason + ")")
}

// Fail erases the bar and reports err.
func (t *Tracker) Fail(err error) {
	t.finish(fmt.Sprintf("error: %v", err))
}

func (t *Tracker) finish(msg string) {
	if t == nil {
		return
	}
	t.Done()
	fmt.Fprintf(t.out, "  %s %s\n", t.label, msg)
}
