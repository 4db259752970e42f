// Package flows holds the pure orchestration logic behind every Service
// operation. Each flow is a function over a dependency struct of closures, so
// the logic can be exercised without a Service, a Redis client, or a real
// directory.
//
// # Architecture boundaries
//
// Flows decide sequencing and which sentinel error to return. They never emit
// audit events or metrics themselves — observability hooks on the dependency
// structs let the Service layer attach those.
//
// # What this package must NOT do
//
//   - Import the root aclauth package (flows receive sentinels, they do not
//     define them).
//   - Touch session or cookie state directly.
package flows
