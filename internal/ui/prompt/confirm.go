package prompt

import (
	"io"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/raphi011/gitfleet/internal/ui/styles"
)

// maxListed caps how many affected items are printed above the question.
const maxListed = 10

// ConfirmResult holds the answer to a confirmation prompt.
type ConfirmResult struct {
	Confirmed bool
	Cancelled bool
}

// Yes reports whether the user confirmed without cancelling.
func (r ConfirmResult) Yes() bool {
	return r.Confirmed && !r.Cancelled
}

type confirmModel struct {
	question string
	items    []string
	result   ConfirmResult
	done     bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "y", "Y":
		m.result.Confirmed = true
	case "n", "N", "enter":
	case "ctrl+c", "q", "esc":
		m.result.Cancelled = true
	default:
		return m, nil
	}
	m.done = true
	return m, tea.Quit
}

func (m confirmModel) render() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	for i, item := range m.items {
		if i == maxListed {
			b.WriteString(styles.MutedStyle.Render("  ... and " + strconv.Itoa(len(m.items)-maxListed) + " more"))
			b.WriteString("\n")
			break
		}
		b.WriteString("  " + item + "\n")
	}
	b.WriteString(styles.WarningStyle.Render(m.question))
	b.WriteString(" [y/N] ")
	return b.String()
}

func (m confirmModel) View() tea.View {
	return tea.NewView(m.render())
}

// Confirm lists items and asks question, reading keys from in and drawing
// on out. Enter answers no.
func Confirm(in io.Reader, out io.Writer, question string, items []string) (ConfirmResult, error) {
	p := tea.NewProgram(confirmModel{question: question, items: items}, tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return ConfirmResult{}, err
	}
	return final.(confirmModel).result, nil
}
