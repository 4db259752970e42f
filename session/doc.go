// Package session provides server-side session state implementations.
//
// A session is a small string-keyed attribute bag bound to one opaque session
// key. The key is what the transport layer (usually a cookie) hands back on
// subsequent requests; the attribute bag lives server-side.
//
// [RedisStore] keeps the bag in a Redis hash with a TTL. [MemoryStore] keeps
// it in process memory and exists for tests and single-node embedding.
//
// Recreate replaces the session key with a fresh one while dropping all
// attributes, which is the fixation guard used during logout: an attacker who
// planted a key before authentication never ends up naming an authenticated
// session.
package session
