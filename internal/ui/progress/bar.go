package progress

import (
	"fmt"
	"io"
	"strings"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"

	"github.com/raphi011/gitfleet/internal/result"
	"github.com/raphi011/gitfleet/internal/ui/styles"
)

const barWidth = 30

// tally counts repositories by outcome.
type tally struct {
	ok, skipped, failed int
}

func (t *tally) add(s result.Status) {
	switch {
	case s.IsSuccess():
		t.ok++
	case styles.IsSkipped(s):
		t.skipped++
	default:
		t.failed++
	}
}

// barModel renders one batch call: the bar at the last event's percent,
// the running tally and the last repository message.
type barModel struct {
	bar     progress.Model
	title   string
	percent int
	tally   tally
	last    string
	next    tea.Cmd
}

func newBarModel(title string, next tea.Cmd) barModel {
	return barModel{
		bar: progress.New(
			progress.WithWidth(barWidth),
			progress.WithoutPercentage(),
			progress.WithColors(styles.Primary, styles.Accent),
		),
		title: title,
		next:  next,
	}
}

func (m barModel) Init() tea.Cmd {
	return m.next
}

// apply folds a batch event into the model.
func (m barModel) apply(e result.Event) barModel {
	m.percent = max(m.percent, e.Percent)
	if e.Kind != result.EventFinish {
		m.tally.add(e.Status)
		m.last = e.Message
	}
	return m
}

func (m barModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case result.Event:
		return m.apply(msg), m.next
	case tea.KeyPressMsg:
		return m, nil
	default:
		var cmd tea.Cmd
		m.bar, cmd = m.bar.Update(msg)
		return m, cmd
	}
}

func (m barModel) render() string {
	var b strings.Builder
	b.WriteString(m.bar.ViewAs(float64(m.percent) / 100))
	fmt.Fprintf(&b, " %3d%% %s", m.percent, m.title)
	fmt.Fprintf(&b, "  %s %d", styles.SuccessStyle.Render(styles.SymbolSuccess), m.tally.ok)
	if m.tally.skipped > 0 {
		fmt.Fprintf(&b, " %s %d", styles.WarningStyle.Render(styles.SymbolSkipped), m.tally.skipped)
	}
	if m.tally.failed > 0 {
		fmt.Fprintf(&b, " %s %d", styles.ErrorStyle.Render(styles.SymbolFailed), m.tally.failed)
	}
	if m.last != "" {
		b.WriteString("  ")
		b.WriteString(styles.MutedStyle.Render(m.last))
	}
	return b.String()
}

func (m barModel) View() tea.View {
	return tea.NewView(m.render())
}

// BarListener shows a batch call as a progress bar on out.
// The bar appears with the first event and is cleared by the finish event.
type BarListener struct {
	title   string
	display *display
}

var _ result.Listener = (*BarListener)(nil)

// NewBarListener creates a bar labelled title, e.g. "Pulling".
func NewBarListener(out io.Writer, title string) *BarListener {
	return &BarListener{title: title, display: newDisplay(out)}
}

func (l *BarListener) update(e result.Event) {
	l.display.start(newBarModel(l.title, l.display.next()))
	l.display.send(e)
}

func (l *BarListener) OnSuccess(e result.Event) { l.update(e) }
func (l *BarListener) OnError(e result.Event)   { l.update(e) }

func (l *BarListener) OnFinish(e result.Event) {
	l.update(e)
	l.display.stop()
}
