// Package app wires a transformation run together: it owns the logger, the
// global operation registry and the specification loaders, resolves the
// configured specification and moves tables from a source adapter through
// the executor into a sink adapter. It knows nothing about flags or exit
// codes, so the CLI and the tests drive it the same way.
package app
