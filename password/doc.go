// Package password implements one-way credential hashing with Argon2id.
//
// Hashes are emitted in PHC string format with a per-call random salt, so the
// same plaintext never produces the same output twice. Verification recomputes
// the hash with the parameters embedded in the stored string and compares in
// constant time.
//
// Verify deliberately reports false — rather than an error — for any
// malformed or foreign hash string, so a corrupted credential column can never
// be distinguished from a wrong password by a caller.
package password
