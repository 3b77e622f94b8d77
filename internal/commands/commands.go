// Package commands implements the merge, read-tags and edit-tags operations.
package commands

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Handler runs commands against the filesystem and reports to out.
type Handler struct {
	out    io.Writer
	logger logrus.FieldLogger

	// mu serialises writes to out while a watched table refreshes.
	mu sync.Mutex
}

// New creates a Handler. A nil out writes to stdout and a nil logger uses the
// logrus standard logger.
func New(out io.Writer, logger logrus.FieldLogger) *Handler {
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{out: out, logger: logger}
}
