package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/recipego/internal/app"
	"github.com/vk/recipego/internal/recipe"
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

// varFlags collects repeatable -var name=value pairs.
type varFlags map[string]string

func (v varFlags) String() string {
	parts := make([]string, 0, len(v))
	for name, value := range v {
		parts = append(parts, name+"="+value)
	}
	return strings.Join(parts, ",")
}

func (v varFlags) Set(raw string) error {
	name, value, ok := strings.Cut(raw, "=")
	if !ok || name == "" {
		return fmt.Errorf("invalid variable %q: expected name=value", raw)
	}
	v[name] = value
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("recipego", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
Recipego - A sequential recipe execution engine for build automation.

Usage:
  recipego [options] RECIPE_PATH

Arguments:
  RECIPE_PATH
    Path to an XML recipe document.

Options:
`)
		flagSet.PrintDefaults()
	}

	basedirFlag := flagSet.String("basedir", ".", "Working directory for the build.")
	profileFlag := flagSet.String("profile", "", "Path to an HCL runner profile.")
	varsFlag := flagSet.String("vars", "", "Path to a YAML file with build variables.")
	varValues := varFlags{}
	flagSet.Var(varValues, "var", "Build variable as name=value. May be repeated.")
	resultFlag := flagSet.String("result", "", "Path to write the build result as YAML.")
	timeoutFlag := flagSet.Duration("timeout", 0, "Per-command timeout, e.g. '90s'. 0 is no limit.")
	onerrorFlag := flagSet.String("onerror", "", "Default step failure policy. Options: 'fail', 'continue' or 'ignore'.")
	dryRunFlag := flagSet.Bool("dry-run", false, "Parse and validate the recipe without executing it.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Recipe path determined.", "path", path)

	if path == "" {
		slog.Debug("No recipe path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	onerror := strings.ToLower(*onerrorFlag)
	if !recipe.OnError(onerror).Valid() {
		return nil, false, &ExitError{Code: 2, Message: "invalid onerror: must be 'fail', 'continue' or 'ignore'"}
	}

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
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		RecipePath:  path,
		Basedir:     *basedirFlag,
		ProfilePath: *profileFlag,
		VarsPath:    *varsFlag,
		Vars:        map[string]string(varValues),
		ResultPath:  *resultFlag,
		OnError:     onerror,
		Timeout:     *timeoutFlag,
		DryRun:      *dryRunFlag,
		LogFormat:   logFormat,
		LogLevel:    logLevel,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
