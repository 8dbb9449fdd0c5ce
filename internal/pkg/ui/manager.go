// Package ui provides interactive terminal UI components for brocode.
package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/brocode/brocode/internal/pkg/errors"
	"github.com/brocode/brocode/internal/pkg/message"
)

// Spinner provides loading animation functionality.
type Spinner interface {
	Start()
	Stop()
	UpdateText(text string)
}

// Prompter asks the user questions. The commit workflow only depends on this.
type Prompter interface {
	AskYesNo(question string) (bool, error)
	// EditText returns the edited text, or initial when the edit left it
	// unchanged or blank.
	EditText(initial string) (string, error)
}

// Manager defines the interface for UI operations.
type Manager interface {
	Prompter
	DisplayMessage(title, text string)
	ShowSpinner(text string) Spinner
	ShowInfo(msg string)
	ShowWarning(msg string)
	ShowError(err error)
	ShowSuccess(msg string)
}

// DefaultManager implements the Manager interface using charmbracelet libraries.
type DefaultManager struct {
	colorEnabled bool
	editor       string
	styles       *styles
	out          io.Writer
}

// styles holds the lipgloss styles for UI rendering.
type styles struct {
	title      lipgloss.Style
	subject    lipgloss.Style
	body       lipgloss.Style
	success    lipgloss.Style
	errorStyle lipgloss.Style
	warning    lipgloss.Style
	info       lipgloss.Style
}

// NewDefaultManager creates a new DefaultManager with the specified options.
// An empty editor falls back to $EDITOR, then $VISUAL, then an inline editor.
func NewDefaultManager(colorEnabled bool, editor string) *DefaultManager {
	return &DefaultManager{
		colorEnabled: colorEnabled,
		editor:       editor,
		styles:       newStyles(colorEnabled),
		out:          os.Stdout,
	}
}

// SetOutput redirects display output.
func (m *DefaultManager) SetOutput(w io.Writer) {
	m.out = w
}

func newStyles(colorEnabled bool) *styles {
	if !colorEnabled {
		plain := lipgloss.NewStyle()
		return &styles{
			title:      plain,
			subject:    plain,
			body:       plain,
			success:    plain,
			errorStyle: plain,
			warning:    plain,
			info:       plain,
		}
	}

	return &styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")),
		subject: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220")),
		body: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")),
		errorStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")),
		warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")),
		info: lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")),
	}
}

// DisplayMessage prints a commit message between separator lines, with the
// summary highlighted.
func (m *DefaultManager) DisplayMessage(title, text string) {
	cm := message.Split(text)

	fmt.Fprintln(m.out, m.styles.title.Render(title))
	fmt.Fprintln(m.out, strings.Repeat("-", 50))
	fmt.Fprintln(m.out, m.styles.subject.Render(cm.Summary))
	if cm.HasDescription() {
		fmt.Fprintln(m.out)
		fmt.Fprintln(m.out, m.styles.body.Render(cm.Description))
	}
	fmt.Fprintln(m.out, strings.Repeat("-", 50))
}

// AskYesNo prompts the user for a yes/no answer using Bubble Tea.
func (m *DefaultManager) AskYesNo(question string) (bool, error) {
	p := tea.NewProgram(newConfirmModel(question, m.colorEnabled))

	finalModel, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}

	return finalModel.(confirmModel).confirmed, nil
}

// confirmModel is the Bubble Tea model for yes/no confirmation.
type confirmModel struct {
	question  string
	cursor    int // 0 = Yes, 1 = No
	confirmed bool
	done      bool
	styled    bool
}

func newConfirmModel(question string, styled bool) confirmModel {
	return confirmModel{
		question: question,
		cursor:   0,
		styled:   styled,
	}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc", "q", "n", "N":
			m.confirmed = false
			m.done = true
			return m, tea.Quit
		case "y", "Y":
			m.confirmed = true
			m.done = true
			return m, tea.Quit
		case "left", "h":
			m.cursor = 0
		case "right", "l":
			m.cursor = 1
		case "tab":
			m.cursor = 1 - m.cursor
		case "enter", " ":
			m.confirmed = m.cursor == 0
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		answer := "no"
		if m.confirmed {
			answer = "yes"
		}
		return m.question + " " + answer + "\n"
	}

	titleStyle := lipgloss.NewStyle()
	selectedStyle := lipgloss.NewStyle().Underline(true)
	normalStyle := lipgloss.NewStyle()
	if m.styled {
		titleStyle = titleStyle.Bold(true).Foreground(lipgloss.Color("220"))
		selectedStyle = selectedStyle.Bold(true).Foreground(lipgloss.Color("42"))
		normalStyle = normalStyle.Foreground(lipgloss.Color("245"))
	}

	yesStyle, noStyle := normalStyle, normalStyle
	if m.cursor == 0 {
		yesStyle = selectedStyle
	} else {
		noStyle = selectedStyle
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.question))
	sb.WriteString(" ")
	sb.WriteString(yesStyle.Render("[Y]es"))
	sb.WriteString(" / ")
	sb.WriteString(noStyle.Render("[N]o"))

	return sb.String()
}

// EditText opens the user's editor on initial. If no external editor is
// configured, or it fails, an inline huh text area is used instead.
func (m *DefaultManager) EditText(initial string) (string, error) {
	if editor := m.getEditor(); editor != "" {
		edited, err := m.editWithExternalEditor(editor, initial)
		if err == nil {
			return m.finishEdit(initial, edited), nil
		}
		if apperrors.HasCode(err, apperrors.ErrFileSystemError) {
			return "", err
		}
		apperrors.Warn("External editor %q failed: %v", editor, err)
		fmt.Fprintln(m.out, m.styles.info.Render("External editor not available, using inline editor..."))
	}

	edited, err := m.editWithInlineEditor(initial)
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return initial, nil
		}
		return "", fmt.Errorf("failed to edit message: %w", err)
	}

	return m.finishEdit(initial, edited), nil
}

// finishEdit applies keepOriginalIfUntouched and tells the user when an
// emptied message was replaced by the original.
func (m *DefaultManager) finishEdit(initial, edited string) string {
	if strings.TrimSpace(edited) == "" && strings.TrimSpace(initial) != "" {
		m.ShowInfo("The edited message was empty; keeping the original message.")
	}
	return keepOriginalIfUntouched(initial, edited)
}

// keepOriginalIfUntouched returns initial when the edit produced nothing or
// only changed surrounding whitespace.
func keepOriginalIfUntouched(initial, edited string) string {
	trimmed := strings.TrimSpace(edited)
	if trimmed == "" || trimmed == strings.TrimSpace(initial) {
		return initial
	}
	return edited
}

// getEditor returns the editor to use for editing messages.
func (m *DefaultManager) getEditor() string {
	if m.editor != "" {
		return m.editor
	}

	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	if editor := os.Getenv("VISUAL"); editor != "" {
		return editor
	}

	return ""
}

// editWithExternalEditor opens an external editor on a temporary file.
// Temp file failures are reported as file system errors; a failing editor
// process is returned as a plain error so the caller can fall back.
func (m *DefaultManager) editWithExternalEditor(editor, content string) (string, error) {
	tmpFile, err := os.CreateTemp("", "brocode-commit-*.txt")
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to create temp file")
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.WriteString(content); err != nil {
		tmpFile.Close()
		return "", apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to write temp file")
	}
	tmpFile.Close()

	// EDITOR may carry arguments, e.g. "code --wait"
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], tmpPath)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("editor failed: %w", err)
	}

	edited, err := os.ReadFile(tmpPath)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to read edited file")
	}

	return string(edited), nil
}

// editWithInlineEditor uses huh text area for inline editing.
func (m *DefaultManager) editWithInlineEditor(content string) (string, error) {
	edited := content

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Edit Commit Message").
				Description("First line is the summary. Tab then Enter to save, Esc to keep the original.").
				Value(&edited).
				CharLimit(0),
		),
	)

	if err := form.Run(); err != nil {
		return "", err
	}

	return edited, nil
}

// ShowSpinner creates and returns a spinner for loading states.
func (m *DefaultManager) ShowSpinner(text string) Spinner {
	return newBubbleSpinner(text, m.colorEnabled)
}

// ShowInfo displays a progress note.
func (m *DefaultManager) ShowInfo(msg string) {
	fmt.Fprintln(m.out, m.styles.info.Render(msg))
}

// ShowWarning displays a non-fatal problem.
func (m *DefaultManager) ShowWarning(msg string) {
	fmt.Fprintln(m.out, m.styles.warning.Render("Warning: "+msg))
}

// ShowError displays an error message to the user.
func (m *DefaultManager) ShowError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(m.out, m.styles.errorStyle.Render("Error: "+err.Error()))
}

// ShowSuccess displays a success message to the user.
func (m *DefaultManager) ShowSuccess(msg string) {
	fmt.Fprintln(m.out, m.styles.success.Render("[OK] "+msg))
}

// bubbleSpinner implements Spinner using Bubble Tea.
type bubbleSpinner struct {
	text    string
	model   spinnerModel
	program *tea.Program
	done    chan struct{}
	mu      sync.Mutex
}

// spinnerModel is the Bubble Tea model for simple spinner.
type spinnerModel struct {
	spinner  spinner.Model
	text     string
	quitting bool
}

// spinnerTextMsg is sent to update spinner text from outside.
type spinnerTextMsg struct {
	text string
}

// spinnerQuitMsg signals the spinner to quit.
type spinnerQuitMsg struct{}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerTextMsg:
		m.text = msg.text
		return m, nil
	case spinnerQuitMsg:
		m.quitting = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.quitting {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.text)
}

func newBubbleSpinner(text string, colorEnabled bool) *bubbleSpinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	if colorEnabled {
		s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	}

	return &bubbleSpinner{
		text: text,
		model: spinnerModel{
			spinner: s,
			text:    text,
		},
	}
}

func (s *bubbleSpinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.program != nil {
		return
	}

	s.program = tea.NewProgram(s.model, tea.WithInput(nil))
	s.done = make(chan struct{})
	go func(p *tea.Program, done chan struct{}) {
		defer close(done)
		if _, err := p.Run(); err != nil {
			apperrors.Debug("Spinner stopped: %v", err)
		}
	}(s.program, s.done)
}

// Stop quits the spinner and waits until its line has been cleared.
func (s *bubbleSpinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.program == nil {
		return
	}
	s.program.Send(spinnerQuitMsg{})
	<-s.done
	s.program = nil
}

func (s *bubbleSpinner) UpdateText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.text = text
	s.model.text = text
	if s.program != nil {
		s.program.Send(spinnerTextMsg{text: text})
	}
}

// NonInteractiveManager implements Manager for non-interactive mode (--yes flag).
// It never edits and always confirms.
type NonInteractiveManager struct {
	styles *styles
	out    io.Writer
	errOut io.Writer
}

// NewNonInteractiveManager creates a new NonInteractiveManager.
func NewNonInteractiveManager(colorEnabled bool) *NonInteractiveManager {
	return &NonInteractiveManager{
		styles: newStyles(colorEnabled),
		out:    os.Stdout,
		errOut: os.Stderr,
	}
}

// SetOutput redirects display output.
func (m *NonInteractiveManager) SetOutput(w io.Writer) {
	m.out = w
	m.errOut = w
}

// DisplayMessage prints the message without decoration.
func (m *NonInteractiveManager) DisplayMessage(title, text string) {
	fmt.Fprintln(m.out, m.styles.title.Render(title))
	fmt.Fprintln(m.out, message.Split(text).String())
}

// AskYesNo always answers yes.
func (m *NonInteractiveManager) AskYesNo(question string) (bool, error) {
	apperrors.Debug("Auto-answering yes: %s", question)
	return true, nil
}

// EditText returns the text unchanged.
func (m *NonInteractiveManager) EditText(initial string) (string, error) {
	return initial, nil
}

// ShowSpinner returns a no-op spinner in non-interactive mode.
func (m *NonInteractiveManager) ShowSpinner(text string) Spinner {
	return &noopSpinner{}
}

// ShowInfo displays a progress note.
func (m *NonInteractiveManager) ShowInfo(msg string) {
	fmt.Fprintln(m.out, m.styles.info.Render(msg))
}

// ShowWarning displays a non-fatal problem.
func (m *NonInteractiveManager) ShowWarning(msg string) {
	fmt.Fprintln(m.errOut, m.styles.warning.Render("Warning: "+msg))
}

// ShowError displays an error message.
func (m *NonInteractiveManager) ShowError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(m.errOut, "Error: %s\n", err.Error())
}

// ShowSuccess displays a success message.
func (m *NonInteractiveManager) ShowSuccess(msg string) {
	fmt.Fprintln(m.out, m.styles.success.Render(msg))
}

// noopSpinner is a no-op implementation of Spinner.
type noopSpinner struct{}

func (s *noopSpinner) Start()            {}
func (s *noopSpinner) Stop()             {}
func (s *noopSpinner) UpdateText(string) {}
