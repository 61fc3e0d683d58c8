package remote

import (
	"strings"

	"github.com/creativeprojects/folderfix/lib"
)

// debugWriter forwards the raw protocol exchange to a lib.Logger
type debugWriter struct {
	logger lib.Logger
}

func (w *debugWriter) Write(p []byte) (int, error) {
	w.logger.Print(strings.TrimRight(string(p), "\r\n"))
	return len(p), nil
}
