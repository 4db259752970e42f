// Package jwt mints and verifies short-lived session assertions.
//
// An assertion is a signed statement that a session was authenticated at issue
// time, intended for handing to downstream services that trust this issuer but
// have no access to the session store. Assertions carry the user id, the login
// identity, and the session key; they are not refresh tokens and should live
// on the order of minutes.
//
// HS256 (shared secret) and Ed25519 (key pair, raw or PEM) are supported.
package jwt
