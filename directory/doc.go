// Package directory ships a Redis-backed reference implementation of the
// UserDirectory interface. Each user is a Redis hash; every schema field gets
// a value-index set so lookups and duplicate counting stay O(1) in the number
// of users, and roles live in a per-user set.
//
// It is meant for small installations and tests. Hosts with an existing user
// store implement aclauth.UserDirectory over that store instead.
package directory
