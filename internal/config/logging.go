package config

import (
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const (
	logLevelFlag  = "log-level"
	logFormatFlag = "log-format"
	logFileFlag   = "log-file"
)

type LogConfig struct {
	Level  string
	Format string
	File   string
}

func RegisterLogFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   logLevelFlag,
			Usage:  "log level (debug, info, warn, error)",
			Value:  "info",
			EnvVar: "LOG_LEVEL",
		},
		cli.StringFlag{
			Name:   logFormatFlag,
			Usage:  "log format (text or json)",
			Value:  "text",
			EnvVar: "LOG_FORMAT",
		},
		cli.StringFlag{
			Name:   logFileFlag,
			Usage:  "also append logs to this file, e.g. app.log",
			EnvVar: "LOG_FILE",
		},
	)
}

func NewLogConfig(c *cli.Context) LogConfig {
	return LogConfig{
		Level:  c.String(logLevelFlag),
		Format: c.String(logFormatFlag),
		File:   c.String(logFileFlag),
	}
}

// ConfigureLogging applies cfg to the standard logrus logger. The returned
// closer releases the log file, if any.
func ConfigureLogging(cfg LogConfig) (io.Closer, error) {
	return configure(log.StandardLogger(), cfg, os.Stderr)
}

func configure(l *log.Logger, cfg LogConfig, stderr io.Writer) (io.Closer, error) {
	level := log.InfoLevel
	if cfg.Level != "" {
		var err error
		level, err = log.ParseLevel(cfg.Level)
		if err != nil {
			return nil, errors.Wrap(err, "invalid log level")
		}
	}
	l.SetLevel(level)

	switch cfg.Format {
	case "", "text":
		l.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		l.SetFormatter(&log.JSONFormatter{})
	default:
		return nil, errors.Errorf("unknown log format %q", cfg.Format)
	}

	if cfg.File == "" {
		l.SetOutput(stderr)
		return nopCloser{}, nil
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open log file %s", cfg.File)
	}
	l.SetOutput(io.MultiWriter(stderr, f))
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
