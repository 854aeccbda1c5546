package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/portsmith/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// settingsFlag collects repeated -s KEY=VALUE overrides.
type settingsFlag []string

func (s *settingsFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *settingsFlag) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("portsmith", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
portsmith - fetches, verifies, and builds third-party library ports.

Usage:
  portsmith [options] [CONFIG_PATH]

Arguments:
  CONFIG_PATH
    Path to a settings .hcl file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to the settings file or directory.")
	cFlag := flagSet.String("c", "", "Path to the settings file or directory (shorthand).")
	cacheDirFlag := flagSet.String("cache-dir", ".portsmith-cache", "Root directory for the artifact cache.")
	listFlag := flagSet.Bool("list", false, "Print the registered ports and exit.")
	clearFlag := flagSet.String("clear", "", "Erase the named port's cached artifact and exit.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	var overrides settingsFlag
	flagSet.Var(&overrides, "s", "Setting override KEY=VALUE (repeatable).")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	configPath := ""
	if *configFlag != "" {
		configPath = *configFlag
	} else if *cFlag != "" {
		configPath = *cFlag
	} else if flagSet.NArg() > 0 {
		configPath = flagSet.Arg(0)
	}
	slog.Debug("Settings path determined.", "path", configPath)

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	for _, override := range overrides {
		if !strings.Contains(override, "=") {
			return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("invalid -s override %q: expected KEY=VALUE", override)}
		}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ConfigPath: configPath,
		CacheDir:   *cacheDirFlag,
		Overrides:  overrides,
		List:       *listFlag,
		ClearPort:  *clearFlag,
		LogFormat:  logFormat,
		LogLevel:   logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
