package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// newLogger returns a console logger on w. An explicit level wins over
// verbose; otherwise warnings and errors are shown, or everything down to
// debug when verbose is set.
func newLogger(w io.Writer, level string, verbose bool) (zerolog.Logger, error) {
	lvl := zerolog.WarnLevel
	if verbose {
		lvl = zerolog.DebugLevel
	}
	if level = strings.TrimSpace(level); level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zerolog.Nop(), newUsageError(fmt.Sprintf("failed to parse log level %q: %v", level, err))
		}
		lvl = parsed
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(lvl).With().Timestamp().Logger(), nil
}
