package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/transtab/internal/adapter"
	"github.com/vk/transtab/internal/app"
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

// stringFlag binds a long and a short flag name to one value.
func stringFlag(fs *flag.FlagSet, long, short, value, usage string) *string {
	p := fs.String(long, value, usage)
	fs.StringVar(p, short, value, usage+" (shorthand)")
	return p
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("transtab", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
transtab - Transform spreadsheets and tabular files with a declarative specification.

Usage:
  transtab [options] -f FORMAT [INPUT]

Arguments:
  INPUT
    A .csv, .xlsx, .parquet or SQLite file, or a directory of such files.

Options:
`)
		flagSet.PrintDefaults()
	}

	inputFlag := stringFlag(flagSet, "input", "i", "", "Input file or directory.")
	formatFlag := stringFlag(flagSet, "format", "f", "", "Specification file, or a name looked up in the formats directory.")
	outputFlag := stringFlag(flagSet, "output", "o", "", "Output file (or directory for a directory input). Defaults to <input>_formatted.xlsx.")
	sheetFlag := stringFlag(flagSet, "sheet", "s", adapter.DefaultSheet, "Output worksheet or database table name.")
	inputSheetFlag := flagSet.String("input-sheet", "", "Worksheet or database table to read. Defaults to the first one.")
	formatsDirFlag := flagSet.String("formats-dir", app.DefaultFormatsDir, "Directory searched for bare specification names.")
	encodingFlag := flagSet.String("encoding", "utf-8", "CSV character set. Options: 'utf-8', 'windows-1252', 'iso-8859-1'.")
	workersFlag := flagSet.Int("workers", app.DefaultWorkers, "Number of files transformed concurrently for a directory input.")
	flagSet.IntVar(workersFlag, "w", app.DefaultWorkers, "Number of files transformed concurrently for a directory input. (shorthand)")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	input := *inputFlag
	if input == "" && flagSet.NArg() > 0 {
		input = flagSet.Arg(0)
	}
	if len(input) > 1 {
		input = strings.TrimRight(input, `/\`)
	}
	slog.Debug("Input path determined.", "path", input)

	if input == "" && *formatFlag == "" {
		slog.Debug("No input provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}
	if input == "" {
		return nil, false, &ExitError{Code: 2, Message: "missing input: pass -i or a positional INPUT"}
	}
	if *formatFlag == "" {
		return nil, false, &ExitError{Code: 2, Message: "missing format: pass -f"}
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

	if *workersFlag < 1 {
		return nil, false, &ExitError{Code: 2, Message: "invalid workers: must be at least 1"}
	}

	encoding := strings.ToLower(*encodingFlag)
	switch encoding {
	case "utf-8", "utf8", "windows-1252", "cp1252", "iso-8859-1", "latin1":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid encoding: must be 'utf-8', 'windows-1252' or 'iso-8859-1'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		InputPath:  input,
		FormatPath: *formatFlag,
		OutputPath: *outputFlag,
		FormatsDir: *formatsDirFlag,
		Sheet:      *sheetFlag,
		InputSheet: *inputSheetFlag,
		Encoding:   encoding,
		Workers:    *workersFlag,
		LogFormat:  logFormat,
		LogLevel:   logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
