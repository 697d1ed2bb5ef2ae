// Package registry owns the type and reference-type definitions of the
// address space, and the plugins that claim vertex and edge types.
//
// The Registry is created once per engine. At startup, plugin modules
// register themselves, schema definitions are copied in from the config
// model, Bootstrap materializes the standard address space, and
// ValidateRegistry checks that schema and plugins agree. At runtime the
// element mapper asks the registry to resolve vertex types and to resolve or
// create reference types named after edge labels.
package registry
