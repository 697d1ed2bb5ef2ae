// Package app contains the core application logic. It wires the address
// space, the event bus, the request pool and the socket.io transport into
// one App, and runs its HTTP servers until the context is cancelled. It is
// decoupled from any specific entrypoint like the CLI.
package app
