package main

import (
	"io"

	"github.com/schollz/progressbar/v3"

	"github.com/levmv/takeoutsort/stage"
)

var _ stage.Observer = (*progress)(nil)

// progress draws one bar per stage on a terminal.
type progress struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

// newProgress returns nil when no bar should be drawn: output is not a
// terminal, or verbose lines would tear through it.
func newProgress(w io.Writer, verbose bool) stage.Observer {
	if verbose || !isTerminal(w) {
		return nil
	}
	return &progress{w: w}
}

func (p *progress) Begin(name string, total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription(name),
		progressbar.OptionSetWidth(20),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionClearOnFinish(),
	)
}

func (p *progress) Step(string) {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p *progress) End() {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}
