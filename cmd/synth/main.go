// Command synth generates synthetic data from a declarative namespace of
// collection schemas and writes it to a configurable sink (spec.md §6).
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/synth/internal/errkit"
)

var rootCmd = &cobra.Command{
	Use:           "synth",
	Short:         "Generate synthetic data from declarative schemas",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logFatal(err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps a fatal error to the process exit code spec.md §6
// defines. Errors cobra itself raises (bad flags, unknown commands) are not
// *errkit.Error and fall back to exit code 1, matching ConfigurationError.
func exitCodeFor(err error) int {
	if e, ok := errkit.As(err); ok {
		return e.Kind.ExitCode()
	}
	return 1
}

// logFatal emits the single structured diagnostic line spec.md §7 requires
// on any fatal error.
func logFatal(err error) {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	if e, ok := errkit.As(err); ok {
		logger.Error("synth run failed", "kind", string(e.Kind), "path", e.Path, "msg", e.Msg)
		return
	}
	logger.Error("synth run failed", "kind", "configuration_error", "msg", err.Error())
}
