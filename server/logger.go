// logger.go: a minimal structured text logger for memline-server.
//
// Grounded on the teacher's Logger interface shape (interfaces.go) and on
// the plain-text, no-framework style the rest of the pack's CLI entry
// points use for their default logger — no logging library is pulled in
// here because none of the example repos' go.mod files carry one; see
// DESIGN.md.
package server

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// logLevel orders the four levels memline.Logger exposes.
type logLevel int

const (
	levelDebug logLevel = iota
	levelInfo
	levelWarn
	levelError
)

func parseLevel(s string) logLevel {
	switch s {
	case "debug":
		return levelDebug
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// TextLogger implements memline.Logger, writing one line per call as
// "time level msg key=value ...". Safe for concurrent use.
type TextLogger struct {
	mu    sync.Mutex
	w     io.Writer
	level logLevel
}

// NewTextLogger writes to w, filtering out messages below minLevel
// ("debug", "info", "warn", "error"; unrecognized values default to
// "info").
func NewTextLogger(w io.Writer, minLevel string) *TextLogger {
	return &TextLogger{w: w, level: parseLevel(minLevel)}
}

// SetLevel changes the minimum level logged, for config.HotReloader to
// apply a reloaded log_level without reconstructing the logger.
func (l *TextLogger) SetLevel(minLevel string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = parseLevel(minLevel)
}

func (l *TextLogger) log(level logLevel, label, msg string, keyvals ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}
	fmt.Fprintf(l.w, "%s %s %s", time.Now().UTC().Format(time.RFC3339), label, msg)
	for i := 0; i+1 < len(keyvals); i += 2 {
		fmt.Fprintf(l.w, " %v=%v", keyvals[i], keyvals[i+1])
	}
	fmt.Fprint(l.w, "\n")
}

func (l *TextLogger) Debug(msg string, keyvals ...interface{}) { l.log(levelDebug, "DEBUG", msg, keyvals...) }
func (l *TextLogger) Info(msg string, keyvals ...interface{})  { l.log(levelInfo, "INFO", msg, keyvals...) }
func (l *TextLogger) Warn(msg string, keyvals ...interface{})  { l.log(levelWarn, "WARN", msg, keyvals...) }
func (l *TextLogger) Error(msg string, keyvals ...interface{}) { l.log(levelError, "ERROR", msg, keyvals...) }
