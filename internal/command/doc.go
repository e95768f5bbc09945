// Package command defines the canonical transformation commands produced by
// every specification front-end and consumed by the executor.
//
// Commands carry only literal data: column references, literal values,
// mapping tables and flags. They never point into a table and are not
// modified after parsing.
package command
