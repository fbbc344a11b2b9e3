// Package log is a thin layer over the standard logger that adds a verbose switch for debug output.
package log

import (
	"fmt"
	"io"
	"log"
	"os"
)

type Logger struct {
	l       *log.Logger
	verbose bool
}

var std = New(os.Stderr, "", 0)

func New(out io.Writer, prefix string, flag int) *Logger {
	return &Logger{l: log.New(out, prefix, flag)}
}

func (l *Logger) SetVerbose(verbose bool) {
	l.verbose = verbose
}

// Println prints to the logger in the manner of [fmt.Println].
func (l *Logger) Println(v ...any) {
	l.l.Output(2, fmt.Sprintln(v...))
}

// Printf prints to the logger in the manner of [fmt.Printf].
func (l *Logger) Printf(format string, v ...any) {
	l.l.Output(2, fmt.Sprintf(format, v...))
}

// Debugf is Printf, but only when the logger is verbose.
func (l *Logger) Debugf(format string, v ...any) {
	if !l.verbose {
		return
	}
	l.l.Output(2, "debug: "+fmt.Sprintf(format, v...))
}

func SetVerbose(verbose bool) {
	std.SetVerbose(verbose)
}

func Println(v ...any) {
	std.l.Output(2, fmt.Sprintln(v...))
}

func Printf(format string, v ...any) {
	std.l.Output(2, fmt.Sprintf(format, v...))
}

func Debugf(format string, v ...any) {
	if !std.verbose {
		return
	}
	std.l.Output(2, "debug: "+fmt.Sprintf(format, v...))
}
