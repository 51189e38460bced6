package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
)

// StageTracker prints one line per pipeline stage with a completion bar
type StageTracker struct {
	mu      sync.Mutex
	out     io.Writer
	bar     progress.Model
	started map[string]time.Time
}

// NewStageTracker creates a tracker writing to out
func NewStageTracker(out io.Writer) *StageTracker {
	return &StageTracker{
		out:     out,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(24)),
		started: make(map[string]time.Time),
	}
}

// StageStarted announces a stage; total <= 0 means the size is not known up front
func (t *StageTracker) StageStarted(stage string, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.started[stage] = time.Now()
	if total > 0 {
		fmt.Fprintf(t.out, "%s %s %s\n", Magenta("»"), Cyan(stage), Dim(fmt.Sprintf("(%d)", total)))
	} else {
		fmt.Fprintf(t.out, "%s %s\n", Magenta("»"), Cyan(stage))
	}
}

// StageFinished prints the bar for a finished stage
func (t *StageTracker) StageFinished(stage string, ok, failed int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := time.Duration(0)
	if start, found := t.started[stage]; found {
		elapsed = time.Since(start).Round(time.Millisecond)
	}

	fmt.Fprintf(t.out, "  %s %s %s %s\n",
		t.bar.ViewAs(Ratio(ok, failed)),
		Green(fmt.Sprintf("%d ok", ok)),
		failedLabel(failed),
		Dim(elapsed.String()))
}

// Ratio returns ok/(ok+failed), or 1 when there was nothing to do
func Ratio(ok, failed int) float64 {
	if ok+failed == 0 {
		return 1
	}
	return float64(ok) / float64(ok+failed)
}

func failedLabel(failed int) string {
	label := fmt.Sprintf("%d failed", failed)
	if failed == 0 {
		return Dim(label)
	}
	return Red(label)
}
