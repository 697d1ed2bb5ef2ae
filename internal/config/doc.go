// Package config defines the format-agnostic configuration model for the
// application, along with the core interfaces (Loader, Converter) for
// loading and interpreting configuration from various sources.
//
// The `config.Model` carries the server settings and the schema: vertex
// types with their ordered fields and edge types with their inverse names.
// The registry consumes the schema; the app consumes the server settings.
// Concrete implementations of the interfaces, for HCL and YAML, are provided
// in separate packages.
package config
