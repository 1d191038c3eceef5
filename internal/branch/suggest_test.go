package branch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggest(t *testing.T) {
	branches := []Branch{
		{Name: "main", Type: Local},
		{Name: "feature/login", Type: Local},
		{Name: "feature/login", Type: Remote},
		{Name: "feature/logout", Type: Remote},
		{Name: "release", Type: Local},
	}

	got := Suggest("login", branches, 5)
	assert.Equal(t, []string{"feature/login"}, got)

	got = Suggest("feat", branches, 5)
	assert.ElementsMatch(t, []string{"feature/login", "feature/logout"}, got)

	assert.Len(t, Suggest("feat", branches, 1), 1)
	assert.Empty(t, Suggest("xyz", branches, 5))
	assert.Empty(t, Suggest("", branches, 5))
	assert.Empty(t, Suggest("main", branches, 5), "exact names are not suggestions")
}
