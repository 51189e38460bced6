package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// ErrPromptAborted is returned when the user leaves the prompt with Ctrl+C or Esc
var ErrPromptAborted = errors.New("prompt aborted")

// TagQuestion is asked when no tag is given on the command line
const TagQuestion = "Enter search tag or press enter to download all images from the main page"

// IsInteractive reports whether both stdin and stdout are terminals
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// TagModel is a single-line text prompt
type TagModel struct {
	input   textinput.Model
	done    bool
	aborted bool
}

// NewTagModel creates a focused prompt
func NewTagModel(question string) TagModel {
	ti := textinput.New()
	ti.Prompt = Cyan(question) + ": "
	ti.Placeholder = "main page"
	ti.CharLimit = 128
	ti.Focus()
	return TagModel{input: ti}
}

func (m TagModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m TagModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.aborted = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m TagModel) View() string {
	if m.done || m.aborted {
		return ""
	}
	return m.input.View() + "\n"
}

// Value returns the text typed so far
func (m TagModel) Value() string {
	return m.input.Value()
}

// Aborted reports whether the user cancelled the prompt
func (m TagModel) Aborted() bool {
	return m.aborted
}

// AskTag runs the interactive prompt on the terminal
func AskTag() (string, error) {
	final, err := tea.NewProgram(NewTagModel(TagQuestion)).Run()
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	m := final.(TagModel)
	if m.Aborted() {
		return "", ErrPromptAborted
	}
	return strings.TrimSpace(m.Value()), nil
}

// ReadLine prints question and reads one line from in. EOF yields an empty answer.
func ReadLine(in io.Reader, out io.Writer, question string) (string, error) {
	fmt.Fprintf(out, "%s: ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Pause waits for a line on in after printing msg
func Pause(in io.Reader, out io.Writer, msg string) {
	fmt.Fprintln(out, Dim(msg))
	_, _ = bufio.NewReader(in).ReadString('\n')
}
