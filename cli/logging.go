package cli

import (
	"io"
	"time"

	"github.com/Remi1095/chronicle/client/config"
	"github.com/Remi1095/chronicle/pkg/errors"
	"github.com/rs/zerolog"
)

// NewLogger builds the command line logger. Logs go to w, normally stderr,
// so that command output on stdout can be piped. Verbose lowers the level to
// debug whatever the configuration says.
func NewLogger(cfg config.LogConfig, verbose bool, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), errors.Wrapf(config.ErrLogLevelInvalid, err, "invalid log level %q", cfg.Level)
	}
	if verbose && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}

	out := w
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    !isTerminal(w),
		}
	}

	return zerolog.New(out).Level(level).With().
		Timestamp().
		Str("component", "chronicle-cli").
		Logger(), nil
}
