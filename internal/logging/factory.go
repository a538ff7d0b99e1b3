package logging

import (
	"io"
	"log/slog"

	"github.com/sirupsen/logrus"
)

const (
	BackendSlog   = "slog"
	BackendLogrus = "logrus"
)

// New builds a JSON logger writing to w. Unknown backends fall back to slog.
func New(backend string, w io.Writer) Logger {
	if backend == BackendLogrus {
		l := logrus.New()
		l.SetOutput(w)
		l.SetFormatter(&logrus.JSONFormatter{})
		return NewLogrusLogger(l)
	}
	return NewSlogLogger(slog.New(slog.NewJSONHandler(w, nil)))
}
