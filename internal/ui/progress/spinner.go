package progress

import (
	"io"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/raphi011/gitfleet/internal/ui/styles"
)

type spinnerText string

type spinnerModel struct {
	spinner spinner.Model
	text    string
	next    tea.Cmd
}

func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next)
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerText:
		m.text = string(msg)
		return m, m.next
	case tea.KeyPressMsg:
		return m, nil
	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m spinnerModel) View() tea.View {
	return tea.NewView(m.spinner.View() + " " + m.text)
}

// Spinner shows an animated message on out while a call of unknown length
// runs, such as listing the repositories of a GitHub organisation.
type Spinner struct {
	text    string
	display *display
}

// NewSpinner creates a stopped spinner showing text.
func NewSpinner(out io.Writer, text string) *Spinner {
	return &Spinner{text: text, display: newDisplay(out)}
}

// Start shows the spinner.
func (s *Spinner) Start() {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.AccentStyle))
	s.display.start(spinnerModel{spinner: sp, text: s.text, next: s.display.next()})
}

// SetText replaces the message.
func (s *Spinner) SetText(text string) {
	if !s.display.send(spinnerText(text)) {
		s.text = text
	}
}

// Stop removes the spinner from the terminal.
func (s *Spinner) Stop() {
	s.display.stop()
}
