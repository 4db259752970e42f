// Package middleware adapts aclauth to net/http: cookie transport over the
// request/response pair, per-request service binding, and a role guard acting
// on AccessDecision values.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Service calls. It does NOT make
// authorization decisions itself — those come from Service.RestrictAccess.
//
// # What this package must NOT do
//
//   - Verify credentials or tokens (delegates to the Service).
//   - Render bodies beyond plain status text.
package middleware
