// Package inmemorytopology provides a thread-safe, in-memory implementation
// of the topologystore.Store interface. References are indexed by source and
// by target so both lookup directions cost the same.
package inmemorytopology
