// Package executor applies a sequence of commands to a table.
//
// Commands run one at a time in the order given, each seeing the table as
// the previous command left it. Custom operations are bound before the
// first command runs, so an unknown name fails the run without touching a
// row. Any error stops the run.
package executor
