package logger

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// SetupLogger installs the process default logger and returns it. Logs go to
// stderr so command output on stdout stays machine readable.
func SetupLogger(logLevel string, logJSON, logSource bool) Logger {
	level, ok := ParseLevel(logLevel)
	if !ok {
		level = InfoLevel
	}
	Init(&Config{
		Level:      level,
		Output:     os.Stderr,
		JSON:       logJSON,
		AddSource:  logSource,
		TimeFormat: "15:04:05",
	})
	return defaultLogger
}

func GetLoggerConfig(cmd *cobra.Command) (string, bool, bool, error) {
	logLevel, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return "", false, false, fmt.Errorf("failed to get log-level flag: %w", err)
	}
	logJSON, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		return "", false, false, fmt.Errorf("failed to get log-json flag: %w", err)
	}
	logSource, err := cmd.Flags().GetBool("log-source")
	if err != nil {
		return "", false, false, fmt.Errorf("failed to get log-source flag: %w", err)
	}
	return logLevel, logJSON, logSource, nil
}
