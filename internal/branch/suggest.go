package branch

import "github.com/sahilm/fuzzy"

// source implements fuzzy.Source over branch names.
type source []Branch

func (s source) String(i int) string { return s[i].Name }
func (s source) Len() int            { return len(s) }

// Suggest returns up to limit distinct branch names matching query,
// best match first. Used to answer "did you mean" for unknown names.
func Suggest(query string, branches []Branch, limit int) []string {
	if query == "" || limit <= 0 {
		return nil
	}

	seen := make(map[string]bool)
	var names []string
	for _, m := range fuzzy.FindFrom(query, source(branches)) {
		if seen[m.Str] || m.Str == query {
			continue
		}
		seen[m.Str] = true
		names = append(names, m.Str)
		if len(names) == limit {
			break
		}
	}
	return names
}
