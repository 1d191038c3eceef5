package git

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckGit(t *testing.T) {
	t.Parallel()
	// git must be available in CI and dev environments
	require.NoError(t, CheckGit(context.Background()))
}

func TestParseVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Version
	}{
		{"git version 2.43.0\n", Version{2, 43, 0}},
		{"git version 2.39.3 (Apple Git-145)", Version{2, 39, 3}},
		{"git version 2.45.1.windows.1", Version{2, 45, 1}},
		{"git version 2.30.rc1", Version{2, 30, 0}},
	}
	for _, tt := range tests {
		got, err := ParseVersion(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "hub version 2.14.2", "git version x.y"} {
		_, err := ParseVersion(bad)
		assert.Error(t, err, bad)
	}
}

func TestVersionLess(t *testing.T) {
	t.Parallel()
	assert.True(t, Version{2, 28, 9}.Less(MinVersion))
	assert.False(t, Version{2, 29, 0}.Less(MinVersion))
	assert.False(t, Version{3, 0, 0}.Less(MinVersion))
	assert.Equal(t, "2.29.0", MinVersion.String())
}
