// Package progress reports index build progress on a terminal or in CI logs.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter receives batch progress while regulations are embedded.
type Reporter interface {
	Start(total int)
	Update(done int)
	Finish()
}

// NewReporter returns a CIReporter when the CI or GITHUB_ACTIONS variable is
// set and a TerminalReporter otherwise. Both write to w.
func NewReporter(description string, w io.Writer) Reporter {
	if w == nil {
		w = os.Stderr
	}
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{description: description, out: w}
	}
	return &TerminalReporter{description: description, out: w}
}

// Func adapts r to a callback of the form func(done, total int). The first
// call starts the reporter.
func Func(r Reporter) func(done, total int) {
	started := false
	return func(done, total int) {
		if !started {
			r.Start(total)
			started = true
		}
		r.Update(done)
	}
}

// TerminalReporter displays a progress bar.
type TerminalReporter struct {
	description string
	out         io.Writer
	bar         *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.out),
		progressbar.OptionSetDescription(r.description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Update(done int) {
	if r.bar != nil {
		_ = r.bar.Set(done)
	}
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter prints line-by-line progress suitable for CI logs.
type CIReporter struct {
	description string
	out         io.Writer
	total       int
}

func (r *CIReporter) Start(total int) {
	r.total = total
	fmt.Fprintf(r.out, "%s: %d records\n", r.description, total)
}

func (r *CIReporter) Update(done int) {
	fmt.Fprintf(r.out, "[%d/%d] %s\n", done, r.total, r.description)
}

func (r *CIReporter) Finish() {
	fmt.Fprintf(r.out, "%s: done\n", r.description)
}
