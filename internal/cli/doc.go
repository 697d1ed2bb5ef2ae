// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates serve flags into the application's configuration and runs the
// client subcommands against a session.
package cli
