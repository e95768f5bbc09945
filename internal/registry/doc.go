// Package registry resolves the operation names used by `do` commands.
//
// Two scopes exist. The global Registry is filled at startup by compiled
// modules and is read-only afterwards. A Scope holds the operations of one
// specification, interpreted from a Go file that sits next to it. Lookup
// searches the specification's Scope first; a name defined in both scopes
// resolves to the specification's definition and the shadowing is logged.
//
// Operations exchange plain Go values so the same signatures work for
// compiled and interpreted code: a row is a map[string]any keyed by column
// title, and a cell is "" (empty), a string, an int64, a float64 or a
// time.Time.
package registry
