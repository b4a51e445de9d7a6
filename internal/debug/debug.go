// Package debug is Snipe's lightweight structured logger. It never writes to
// stdout: the MCP transport in cmd/snipe owns stdio for protocol framing, so
// every line here goes to stderr (or a log file) and is gated behind an
// enable flag, mirroring lci's internal/debug package.
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// EnableDebug can be set at build time:
//
//	go build -ldflags "-X github.com/snipe-dev/snipe/internal/debug.EnableDebug=true"
var EnableDebug = "false"

var (
	mu     sync.Mutex
	output io.Writer = os.Stderr
)

// SetOutput redirects debug output; pass nil to silence it entirely.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// IsEnabled reports whether debug logging is currently active.
func IsEnabled() bool {
	return EnableDebug == "true" || os.Getenv("SNIPE_DEBUG") == "1"
}

func writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return output
}

// Log writes a component-tagged debug line, e.g. Log("parser", "parsed %s in %v", path, dur).
func Log(component, format string, args ...interface{}) {
	if !IsEnabled() {
		return
	}
	w := writer()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[snipe:%s] "+format+"\n", append([]interface{}{component}, args...)...)
}

func LogParser(format string, args ...interface{})    { Log("parser", format, args...) }
func LogGraph(format string, args ...interface{})     { Log("graph", format, args...) }
func LogRules(format string, args ...interface{})     { Log("rules", format, args...) }
func LogWatch(format string, args ...interface{})     { Log("watch", format, args...) }
func LogMCP(format string, args ...interface{})       { Log("mcp", format, args...) }
func LogCache(format string, args ...interface{})     { Log("cache", format, args...) }

// Warn always writes, regardless of the debug flag — it is for conditions
// an operator should notice (a parse failure during scan, a cache write
// failure) per spec.md §7's "logged" failure classes.
func Warn(component, format string, args ...interface{}) {
	w := writer()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[snipe:%s:WARN] "+format+"\n", append([]interface{}{component}, args...)...)
}
