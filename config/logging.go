package config

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ConfigureLogging applies the log settings to the logrus standard logger.
// Output goes to stderr unless LogFile is set, so diagnostics never mix with
// the operator console on stdout. The returned Closer releases the log file.
func ConfigureLogging(c *Config) (io.Closer, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: log_level: %w", ErrInvalidConfig, err)
	}

	var formatter logrus.Formatter
	switch c.LogFormat {
	case "", "text":
		formatter = &logrus.TextFormatter{FullTimestamp: true}
	case "json":
		formatter = &logrus.JSONFormatter{}
	default:
		return nil, fmt.Errorf("%w: log_format %q must be text or json", ErrInvalidConfig, c.LogFormat)
	}

	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out, closer = f, f
	}

	logrus.SetLevel(level)
	logrus.SetFormatter(formatter)
	logrus.SetOutput(out)

	logrus.WithFields(logrus.Fields{
		"function": "ConfigureLogging",
		"level":    level.String(),
		"format":   c.LogFormat,
		"file":     c.LogFile,
	}).Debug("Logging configured")
	return closer, nil
}
