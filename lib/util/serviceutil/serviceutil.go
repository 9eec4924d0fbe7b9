package serviceutil

import (
	"log/slog"
	"os"
)

// Fatal logs err and exits the process.
func Fatal(message string, err error) {
	slog.Error(message, "err", err.Error())
	os.Exit(1)
}
