// Package metrics provides lock-free counters for aclauth observability.
//
// Counters are plain uint64 slots incremented atomically. The write path is
// allocation-free; Snapshot deep-copies current values for exporters.
//
// # Architecture boundaries
//
// This package owns metric storage and snapshot creation. Metric export
// (Prometheus) lives in metrics/export/ and reads Snapshot values.
//
// # What this package must NOT do
//
//   - Perform I/O or network calls.
//   - Import aclauth or any sibling package.
//   - Expose global metric registries.
package metrics
