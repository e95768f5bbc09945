// Package parser implements the textual specification front-end: a
// line-oriented command language with case-insensitive keywords, single
// quoted column names and '#' comments. It produces the same command values
// as the schema front-end.
package parser
