package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

const defaultLevel = logrus.InfoLevel

// Logrus builds context-scoped loggers that share a level and an output.
type Logrus struct {
	level  string
	output io.Writer
}

// NewLogrus creates a new logrus factory
func NewLogrus(level string, output io.Writer) *Logrus {
	return &Logrus{level: level, output: output}
}

// Get returns a logger tagged with the component that owns it.
// An unknown level falls back to info.
func (l *Logrus) Get(context string) *logrus.Entry {
	log := logrus.New()
	level, err := logrus.ParseLevel(l.level)
	if err != nil {
		level = defaultLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(l.output)

	return log.WithFields(logrus.Fields{
		"Context": context,
	})
}
