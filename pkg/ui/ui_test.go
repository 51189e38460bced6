package ui

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSummaryAlignsRows(t *testing.T) {
	out := RenderSummary("Run summary", []SummaryRow{
		Row("Pages", 3),
		Row("Downloaded", 42),
	})

	assert.Contains(t, out, "Run summary")
	assert.Contains(t, out, "Pages")
	assert.Contains(t, out, "42")

	var pagesLine, dlLine string
	for _, l := range strings.Split(out, "\n") {
		if strings.Contains(l, "Pages") {
			pagesLine = l
		}
		if strings.Contains(l, "Downloaded") {
			dlLine = l
		}
	}
	require.NotEmpty(t, pagesLine)
	require.NotEmpty(t, dlLine)
	assert.Equal(t, strings.Index(dlLine, "42"), strings.Index(pagesLine, "3"))
}

func TestStageTracker(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStageTracker(&buf)

	tr.StageStarted("download", 4)
	tr.StageFinished("download", 3, 1)

	out := buf.String()
	assert.Contains(t, out, "download")
	assert.Contains(t, out, "(4)")
	assert.Contains(t, out, "3 ok")
	assert.Contains(t, out, "1 failed")
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 1.0, Ratio(0, 0))
	assert.Equal(t, 0.75, Ratio(3, 1))
	assert.Equal(t, 0.0, Ratio(0, 2))
}

func TestPrintHelpersWriteToOutput(t *testing.T) {
	var buf bytes.Buffer
	old := Output
	Output = &buf
	defer func() { Output = old }()

	PrintError("failed", "boom")
	PrintInfo("Directory", "/tmp/x")

	assert.Contains(t, buf.String(), "failed: boom")
	assert.Contains(t, buf.String(), "/tmp/x")
}

func TestReadLine(t *testing.T) {
	var out bytes.Buffer
	answer, err := ReadLine(strings.NewReader("  Nature \n"), &out, "Tag")
	require.NoError(t, err)
	assert.Equal(t, "Nature", answer)
	assert.Equal(t, "Tag: ", out.String())

	answer, err = ReadLine(strings.NewReader(""), &out, "Tag")
	require.NoError(t, err)
	assert.Empty(t, answer)
}

func TestTagModelTyping(t *testing.T) {
	var m tea.Model = NewTagModel("Tag")
	for _, r := range "cats" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	tm := m.(TagModel)
	assert.Equal(t, "cats", tm.Value())
	assert.False(t, tm.Aborted())
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestTagModelAbort(t *testing.T) {
	m, _ := NewTagModel("Tag").Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, m.(TagModel).Aborted())
}

func TestPause(t *testing.T) {
	var out bytes.Buffer
	Pause(strings.NewReader("\n"), &out, "Press Enter to exit")
	assert.Contains(t, out.String(), "Press Enter to exit")
}
