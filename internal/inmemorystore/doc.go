// Package inmemorystore provides a thread-safe, in-memory implementation
// of the nodestore.Store interface. The whole address space is memory
// resident; nothing is persisted.
package inmemorystore
