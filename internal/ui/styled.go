package ui

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// StyledRenderer redraws a single colored status line on a terminal and
// prints warnings above it.
type StyledRenderer struct {
	mu      sync.Mutex
	out     io.Writer
	styles  Styles
	lineLen int
}

// NewStyledRenderer creates a renderer for interactive terminals.
func NewStyledRenderer(cfg Config) *StyledRenderer {
	return &StyledRenderer{out: cfg.Output, styles: GetStyles(cfg.NoColor)}
}

// Start implements Renderer.
func (r *StyledRenderer) Start(ctx context.Context) error {
	return nil
}

func (r *StyledRenderer) clearLine() {
	if r.lineLen > 0 {
		_, _ = fmt.Fprintf(r.out, "\r%*s\r", r.lineLen, "")
		r.lineLen = 0
	}
}

// UpdateProgress implements Renderer.
func (r *StyledRenderer) UpdateProgress(event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	text := event.Message
	if event.Total > 0 {
		text = fmt.Sprintf("%d/%d %s", event.Current, event.Total, event.Message)
	}
	line := r.styles.Stage.Render(fmt.Sprintf("%-8s", event.Stage.String())) + " " + text

	r.clearLine()
	n, _ := fmt.Fprint(r.out, line)
	r.lineLen = n
}

// AddError implements Renderer.
func (r *StyledRenderer) AddError(event ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	style, prefix := r.styles.Error, "✗"
	if event.IsWarn {
		style, prefix = r.styles.Warning, "!"
	}

	r.clearLine()
	if event.File != "" {
		_, _ = fmt.Fprintln(r.out, style.Render(fmt.Sprintf("%s %s: %v", prefix, event.File, event.Err)))
	} else {
		_, _ = fmt.Fprintln(r.out, style.Render(fmt.Sprintf("%s %v", prefix, event.Err)))
	}
}

// Complete implements Renderer.
func (r *StyledRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clearLine()
	_, _ = fmt.Fprintln(r.out, r.styles.Success.Render("✓ "+completionLine(stats)))
}

// Stop implements Renderer.
func (r *StyledRenderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearLine()
	return nil
}
