package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/raphi011/gitfleet/internal/result"
)

func TestStatusSymbol(t *testing.T) {
	assert.Equal(t, SymbolSuccess, StatusSymbol(result.Successful))
	assert.Equal(t, SymbolSkipped, StatusSymbol(result.NotCloned))
	assert.Equal(t, SymbolSkipped, StatusSymbol(result.ConflictPredicted))
	assert.Equal(t, SymbolFailed, StatusSymbol(result.TransportFailure))
	assert.Equal(t, SymbolFailed, StatusSymbol(result.Failed))
}

func TestFormatStatus_ContainsName(t *testing.T) {
	for _, s := range result.AllStatuses() {
		out := FormatStatus(s)
		assert.Contains(t, out, s.String())
		assert.Contains(t, out, StatusSymbol(s))
	}
}
