package debug

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogIsSilentWithoutEnableDebug(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)

	prev := EnableDebug
	EnableDebug = "false"
	defer func() { EnableDebug = prev }()

	Log("graph", "scanned %d files", 3)
	assert.Empty(t, buf.String())
}

func TestLogWritesWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)

	prev := EnableDebug
	EnableDebug = "true"
	defer func() { EnableDebug = prev }()

	Log("graph", "scanned %d files", 3)
	assert.Contains(t, buf.String(), "[snipe:graph] scanned 3 files")
}

func TestWarnAlwaysWritesRegardlessOfEnableDebug(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)

	prev := EnableDebug
	EnableDebug = "false"
	defer func() { EnableDebug = prev }()

	Warn("cache", "write failed: %v", "disk full")
	assert.Contains(t, buf.String(), "[snipe:cache:WARN] write failed: disk full")
}
