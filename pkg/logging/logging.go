// Package logging builds the zerolog loggers the razr CLI runs with.
package logging

import (
	"fmt"
	"io"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// NewConsoleLogger builds a console logger writing to out at the named
// level. The caller hook resolves the frame that issued the log call, so
// compiler phases show up as pkg:file:line instead of the logging plumbing.
func NewConsoleLogger(out io.Writer, level string, colorize bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), errors.Errorf("invalid log level %q: %w", level, err)
	}

	writer := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    !colorize,
		PartsOrder: []string{"time", "level", "caller", "message"},
	}

	logger := zerolog.New(writer).
		Level(lvl).
		Hook(timeHook{}).
		Hook(callerHook{colorize: colorize})

	return logger, nil
}

type timeHook struct{}

func (timeHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	// millisecond precision, no timezone
	e.Str("time", time.Now().Format("2006-01-02T15:04:05.0000Z"))
}

type callerHook struct {
	colorize bool
}

func (c callerHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	pc, file, line, ok := runtime.Caller(skipFrameCount(e) + 3)
	if !ok {
		return
	}

	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return
	}

	pkg, _ := splitFuncName(fn.Name())
	e.Str("caller", formatCaller(pkg, file, line, c.colorize))
}

// skipFrameCount reads the event's unexported skipFrame field so the hook
// agrees with zerolog's own CallerSkipFrameCount accounting.
func skipFrameCount(e *zerolog.Event) int {
	v := reflect.ValueOf(e).Elem()
	field := v.FieldByName("skipFrame")
	if field.IsValid() && field.CanAddr() {
		return int(field.Int())
	}
	return 0
}

func splitFuncName(name string) (pkg, function string) {
	lastSlash := strings.LastIndexByte(name, '/')
	if lastSlash < 0 {
		lastSlash = 0
	}
	firstDot := strings.IndexByte(name[lastSlash:], '.') + lastSlash

	pkg = name[:firstDot]
	function = name[firstDot+1:]

	if strings.Contains(pkg, ".(") {
		splt := strings.Split(pkg, ".(")
		pkg = splt[0]
		function = "(" + splt[1] + "." + function
	}

	return pkg, function
}

func formatCaller(pkg, path string, line int, colorize bool) string {
	file := path
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		file = path[idx+1:]
	}

	if colorize {
		file = color.New(color.Bold).Sprint(file)
		num := color.New(color.FgHiRed, color.Bold).Sprintf("%d", line)
		sep := color.New(color.Faint).Sprint(":")
		return fmt.Sprintf("%s%s%s%s%s", pkg, sep, file, sep, num)
	}

	return fmt.Sprintf("%s:%s:%d", pkg, file, line)
}
