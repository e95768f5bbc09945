// Package config defines the format-agnostic specification model and the
// Loader interface that every specification front-end implements.
//
// The `config.Model` is the single input of the executor. Concrete loaders,
// for the textual command language and for HCL or JSON schema documents, are
// provided in separate packages.
package config
