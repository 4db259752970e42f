// Package aclauth provides session-based authentication and role-based
// authorization on top of caller-supplied collaborators: a user directory, a
// session store, a cookie transport, and a notification sender.
//
// The package is the public surface. It exposes [Service], [Builder],
// [Config], value types, and sentinel errors. Flow orchestration and shared
// primitives live under internal/ and are never exported. Reference
// collaborator implementations ship in the session, directory, mailer, and
// middleware subpackages; production integrations may replace any of them.
//
// # Request binding
//
// A [Service] is built once with [Builder.Build] and is safe for concurrent
// use. Operations that touch session or cookie state run on a request-scoped
// copy obtained from [Service.ForRequest], which carries the request's
// session store, cookie transport, and an ordered error-code recorder.
// ForRequest also resumes a remembered login when the session is anonymous
// and both remember cookies are present.
//
// # Architecture boundaries
//
// aclauth never routes, redirects, or renders. [Service.RestrictAccess]
// returns an [AccessDecision] for the HTTP layer to act on; the middleware
// subpackage shows one way to do that. Database queries, email delivery, and
// cookie mechanics stay behind the [UserDirectory], [NotificationSender],
// and [CookieTransport] interfaces.
package aclauth
