// Package failure defines the error kinds a transformation run can end with.
// Every kind is fatal to the run; callers match them with errors.As.
package failure
