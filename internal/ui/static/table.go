// Package static provides non-interactive terminal output components.
//
// This package renders batch results, branch lists, repository status
// and the registry as borderless lipgloss tables.
package static

import (
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/raphi011/gitfleet/internal/branch"
	"github.com/raphi011/gitfleet/internal/git"
	"github.com/raphi011/gitfleet/internal/registry"
	"github.com/raphi011/gitfleet/internal/result"
	"github.com/raphi011/gitfleet/internal/ui/styles"
)

// Column headers
var (
	ResultHeaders = []string{"REPO", "STATUS", "DETAIL"}
	BranchHeaders = []string{"BRANCH", "TYPE"}
	StatusHeaders = []string{"REPO", "BRANCH", "STAGED", "MODIFIED", "UNTRACKED", "CONFLICTED"}
	RepoHeaders   = []string{"ID", "NAME", "CLONED", "PATH", "LABELS"}
)

// RenderTable creates a formatted table with proper column alignment.
// Headers and rows are rendered using lipgloss/table which automatically
// calculates column widths based on content. No borders are rendered.
func RenderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	var output strings.Builder

	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})

	output.WriteString(t.String())
	output.WriteString("\n")

	return output.String()
}

// ResultRows converts batch results to table rows.
func ResultRows(results []result.Result) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{r.Name, styles.FormatStatus(r.Status), resultDetail(r)})
	}
	return rows
}

// resultDetail describes what happened: the payload for successes, the
// error text without the repository prefix otherwise.
func resultDetail(r result.Result) string {
	if r.OK() {
		var parts []string
		if r.Payload.Branch != "" {
			parts = append(parts, r.Payload.Branch)
		}
		if r.Payload.Commit != "" {
			parts = append(parts, shortCommit(r.Payload.Commit))
		}
		if r.Payload.Path != "" {
			parts = append(parts, r.Payload.Path)
		}
		return strings.Join(parts, " ")
	}
	msg := strings.TrimPrefix(r.Message, r.Name+": ")
	if msg == "" {
		msg = r.Status.Description()
	}
	return styles.MutedStyle.Render(msg)
}

func shortCommit(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}

// BranchRows converts branches to table rows.
func BranchRows(branches []branch.Branch) [][]string {
	rows := make([][]string, 0, len(branches))
	for _, b := range branches {
		rows = append(rows, []string{b.Name, b.Type.String()})
	}
	return rows
}

// StatusRow renders the working copy status of one repository.
func StatusRow(name string, ws git.WorkingStatus) []string {
	branchName := ws.Branch
	if branchName == "" {
		branchName = styles.MutedStyle.Render("(detached)")
	}
	return []string{
		name,
		branchName,
		count(len(ws.Staged), styles.SuccessStyle),
		count(len(ws.Modified), styles.WarningStyle),
		count(len(ws.Untracked), styles.MutedStyle),
		count(len(ws.Conflicted), styles.ErrorStyle),
	}
}

// StatusUnavailableRow renders a repository whose status could not be read,
// e.g. because it is not cloned.
func StatusUnavailableRow(name, reason string) []string {
	return []string{name, styles.MutedStyle.Render(reason), "-", "-", "-", "-"}
}

func count(n int, style lipgloss.Style) string {
	if n == 0 {
		return "-"
	}
	return style.Render(strconv.Itoa(n))
}

// RepoRows converts registry handles to table rows.
func RepoRows(repos []*registry.Repo) [][]string {
	rows := make([][]string, 0, len(repos))
	for _, r := range repos {
		cloned := "no"
		if r.Cloned {
			cloned = "yes"
		}
		rows = append(rows, []string{
			shortCommit(r.ID),
			r.Name,
			cloned,
			r.Path,
			strings.Join(r.Labels, ","),
		})
	}
	return rows
}
