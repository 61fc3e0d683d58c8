package cmd

import (
	"github.com/creativeprojects/folderfix/lib"
	"github.com/creativeprojects/folderfix/term"
)

// termLogger forwards debug information to the terminal printer.
type termLogger struct{}

func (l *termLogger) Print(a ...any) {
	term.Debug(a...)
}

func (l *termLogger) Println(a ...any) {
	term.Debug(a...)
}

func (l *termLogger) Printf(format string, a ...any) {
	term.Debugf(format, a...)
}

// debugLogger returns a logger only in verbose mode: debug output from the
// storage layer is noisy.
func debugLogger() lib.Logger {
	if global.verbose {
		return &termLogger{}
	}
	return &lib.NoLog{}
}
