// Package rate implements Redis-backed attempt budgets for login and
// password-reset requests.
//
// Counters are plain Redis INCR keys with a cooldown TTL applied on first
// increment. A budget is exceeded once the counter passes the configured
// maximum; it clears when the cooldown expires or on explicit Reset after a
// successful login.
package rate
