package shared

import (
	"os"

	"github.com/charmbracelet/log"
)

// SetupLogger returns a stderr logger at the named level. Unknown levels
// fall back to info.
func SetupLogger(level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}

	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
}
