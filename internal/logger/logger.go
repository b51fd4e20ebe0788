// Package logger provides leveled logging for countdown.
//
// Levels:
//
//	0 (default): silent; only command output is shown
//	1 (-v):      info, store backend and write operations
//	2 (-vv):     debug, file paths and timing
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

var (
	mu    sync.Mutex
	level int
	out   io.Writer = os.Stderr

	infoLog  = log.New(io.Discard, "", 0)
	debugLog = log.New(io.Discard, "", 0)
)

// SetLevel configures the active log level (0=silent, 1=info, 2=debug).
func SetLevel(v int) {
	mu.Lock()
	defer mu.Unlock()
	level = v
	rebuild()
}

// SetOutput redirects all log output. Used by tests and the watch daemon.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	rebuild()
}

func rebuild() {
	infoLog = log.New(io.Discard, "", 0)
	debugLog = log.New(io.Discard, "", 0)
	if level >= 1 {
		infoLog = log.New(out, "", 0)
	}
	if level >= 2 {
		debugLog = log.New(out, "[debug] ", 0)
	}
}

// loggers snapshots the active loggers under mu.
func loggers() (info, debug *log.Logger, lvl int) {
	mu.Lock()
	defer mu.Unlock()
	return infoLog, debugLog, level
}

// Level returns the current verbosity level.
func Level() int {
	_, _, lvl := loggers()
	return lvl
}

// Info logs at info level (visible with -v).
func Info(msg string, kv ...any) {
	info, _, _ := loggers()
	info.Print(msg + formatKVs(kv...))
}

// Infof logs a formatted message at info level.
func Infof(format string, args ...interface{}) {
	info, _, _ := loggers()
	info.Printf(format, args...)
}

// Debug logs at debug level (visible with -vv).
func Debug(msg string, kv ...any) {
	_, debug, _ := loggers()
	debug.Print(msg + formatKVs(kv...))
}

// Debugf logs a formatted message at debug level.
func Debugf(format string, args ...interface{}) {
	_, debug, _ := loggers()
	debug.Printf(format, args...)
}

// Timer returns a function that logs elapsed time at debug level when called.
//
//	defer logger.Timer("save events")()
func Timer(name string) func() {
	_, debug, lvl := loggers()
	if lvl < 2 {
		return func() {}
	}
	start := time.Now()
	return func() {
		debug.Printf("%s took %s", name, time.Since(start).Round(time.Millisecond))
	}
}

// Warnf always prints to the log output regardless of level.
func Warnf(format string, args ...interface{}) {
	mu.Lock()
	w := out
	mu.Unlock()
	fmt.Fprintf(w, "⚠️  "+format+"\n", args...)
}

// formatKVs renders key/value pairs as " key=value". A trailing odd value is ignored.
func formatKVs(kv ...any) string {
	s := ""
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		s += " " + key + "=" + fmt.Sprint(kv[i+1])
	}
	return s
}
