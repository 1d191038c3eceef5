package prompt

import (
	"fmt"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func key(k string) tea.KeyPressMsg {
	switch k {
	case "ctrl+c":
		return tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	default:
		return tea.KeyPressMsg{Code: rune(k[0]), Text: k}
	}
}

func TestConfirmModel_Update(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want ConfirmResult
		done bool
	}{
		{"y", ConfirmResult{Confirmed: true}, true},
		{"Y", ConfirmResult{Confirmed: true}, true},
		{"n", ConfirmResult{}, true},
		{"enter", ConfirmResult{}, true},
		{"ctrl+c", ConfirmResult{Cancelled: true}, true},
		{"esc", ConfirmResult{Cancelled: true}, true},
		{"q", ConfirmResult{Cancelled: true}, true},
		{"x", ConfirmResult{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()
			updated, cmd := confirmModel{question: "Unregister 2 repositories?"}.Update(key(tt.key))
			m := updated.(confirmModel)

			assert.Equal(t, tt.want, m.result)
			assert.Equal(t, tt.done, m.done)
			assert.Equal(t, tt.done, cmd != nil, "quits once answered")
		})
	}
}

func TestConfirmResult_Yes(t *testing.T) {
	assert.True(t, ConfirmResult{Confirmed: true}.Yes())
	assert.False(t, ConfirmResult{Confirmed: true, Cancelled: true}.Yes())
	assert.False(t, ConfirmResult{}.Yes())
}

func TestConfirmModel_Render(t *testing.T) {
	t.Parallel()

	m := confirmModel{question: "Unregister 2 repositories?", items: []string{"api", "web"}}
	assert.Equal(t, "  api\n  web\nUnregister 2 repositories? [y/N] ", ansi.Strip(m.render()))

	m.done = true
	assert.Empty(t, m.render())
}

func TestConfirmModel_RenderTruncatesItems(t *testing.T) {
	t.Parallel()

	var items []string
	for i := range maxListed + 3 {
		items = append(items, fmt.Sprintf("repo-%02d", i))
	}
	got := ansi.Strip(confirmModel{question: "Unregister?", items: items}.render())

	assert.Contains(t, got, "repo-09")
	assert.NotContains(t, got, "repo-10")
	assert.Contains(t, got, "... and 3 more")
	assert.Equal(t, maxListed+2, strings.Count(got, "\n")+1)
}
