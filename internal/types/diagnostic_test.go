package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupKeepsFirstOccurrence(t *testing.T) {
	diags := []Diagnostic{
		{File: "a.c", Line: 3, Code: CodeUndefinedSymbol, Message: "first", Severity: SeverityError},
		{File: "a.c", Line: 3, Code: CodeUndefinedSymbol, Message: "first", Severity: SeverityWarning},
		{File: "a.c", Line: 4, Code: CodeUndefinedSymbol, Message: "first", Severity: SeverityError},
	}

	out := Dedup(diags)
	require.Len(t, out, 2)
	assert.Equal(t, SeverityError, out[0].Severity)
	assert.Equal(t, 3, out[0].Line)
	assert.Equal(t, 4, out[1].Line)
}

func TestDedupKeyDiffersOnEveryField(t *testing.T) {
	base := Diagnostic{File: "a.c", Line: 1, Code: CodeArrayBounds, Message: "m"}
	variants := []Diagnostic{
		{File: "b.c", Line: 1, Code: CodeArrayBounds, Message: "m"},
		{File: "a.c", Line: 2, Code: CodeArrayBounds, Message: "m"},
		{File: "a.c", Line: 1, Code: CodeUnusedExtern, Message: "m"},
		{File: "a.c", Line: 1, Code: CodeArrayBounds, Message: "n"},
	}
	for _, v := range variants {
		assert.NotEqual(t, base.DedupKey(), v.DedupKey())
	}
}
