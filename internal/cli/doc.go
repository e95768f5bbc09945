// Package cli turns command-line arguments into an app.Config. It validates
// flag values, prints usage, and reports bad invocations as ExitError values
// carrying the process exit code.
package cli
