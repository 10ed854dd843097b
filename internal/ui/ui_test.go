package ui

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStage_StringAndIcon(t *testing.T) {
	tests := []struct {
		stage Stage
		name  string
		icon  string
	}{
		{StageScanning, "Scanning", "SCAN"},
		{StageReading, "Reading", "READ"},
		{StageIndexing, "Indexing", "INDEX"},
		{StageSaving, "Saving", "SAVE"},
		{StageComplete, "Complete", "DONE"},
		{Stage(99), "Unknown", "???"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.stage.String())
			assert.Equal(t, tt.icon, tt.stage.Icon())
		})
	}
}

func TestNewRenderer_PlainForNonTTY(t *testing.T) {
	buf := &bytes.Buffer{}

	r := NewRenderer(NewConfig(buf))

	_, ok := r.(*PlainRenderer)
	assert.True(t, ok)
	assert.False(t, IsTTY(buf))
	assert.False(t, IsTTY(nil))
}

func TestPlainRenderer_Output(t *testing.T) {
	// Given: a plain renderer
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(NewConfig(buf))
	require.NoError(t, r.Start(context.Background()))

	// When: rendering a full build
	r.UpdateProgress(ProgressEvent{Stage: StageScanning, Message: "/r"})
	r.UpdateProgress(ProgressEvent{Stage: StageReading, Current: 2, Total: 3, Message: "b.txt"})
	r.AddError(ErrorEvent{File: "/r/c.txt", Err: errors.New("permission denied"), IsWarn: true})
	r.Complete(CompletionStats{Documents: 3, Terms: 10, ReadErrors: 1, Duration: 1500 * time.Microsecond, Rebuilt: true, Reason: "no_snapshot"})
	require.NoError(t, r.Stop())

	// Then: one plain line per event, no ANSI codes
	out := buf.String()
	assert.Contains(t, out, "[SCAN] /r\n")
	assert.Contains(t, out, "[READ] 2/3 b.txt\n")
	assert.Contains(t, out, "WARN: /r/c.txt: permission denied\n")
	assert.Contains(t, out, "Indexed 3 documents, 10 terms in 2ms (no_snapshot), 1 unreadable\n")
	assert.NotContains(t, out, "\x1b[")
}

func TestPlainRenderer_CacheHitSummary(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(NewConfig(buf))

	r.Complete(CompletionStats{Documents: 1, Terms: 2, Reason: "cache_hit"})

	assert.Equal(t, "Loaded 1 documents, 2 terms in 0s (cache_hit)\n", buf.String())
}

func TestStyledRenderer_NoColor(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewStyledRenderer(NewConfig(buf, WithNoColor(true)))

	r.UpdateProgress(ProgressEvent{Stage: StageReading, Current: 1, Total: 2, Message: "a.txt"})
	r.AddError(ErrorEvent{Err: errors.New("boom")})
	r.Complete(CompletionStats{Documents: 2, Rebuilt: true})
	require.NoError(t, r.Stop())

	out := buf.String()
	assert.Contains(t, out, "Reading  1/2 a.txt")
	assert.Contains(t, out, "✗ boom\n")
	assert.Contains(t, out, "✓ Indexed 2 documents")
}

func TestNopRenderer(t *testing.T) {
	var r Renderer = NopRenderer{}

	assert.NoError(t, r.Start(context.Background()))
	r.UpdateProgress(ProgressEvent{})
	r.AddError(ErrorEvent{})
	r.Complete(CompletionStats{})
	assert.NoError(t, r.Stop())
}

func TestGetStyles(t *testing.T) {
	assert.Equal(t, "x", GetStyles(true).Score.Render("x"))
}
