// Package internal contains helper utilities that are intentionally private to aclauth,
// including secure token generation for remember-me and password-reset flows.
//
// # Sub-packages
//
//   - audit — async event dispatch (Dispatcher + Sink implementations)
//   - flows — pure-function flow orchestrators for every Service operation
//   - metrics — lock-free counters for authentication observability
//   - rate — Redis-backed login/reset throttling primitives
//
// # What this package must NOT do
//
//   - Export types that appear in the public aclauth API.
//   - Be imported by any package outside the aclauth module.
package internal
