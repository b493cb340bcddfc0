// Package httpapi exposes the application over HTTP: passwordless auth,
// Stripe billing endpoints, and the subscription-gated business plan API.
//
// Routing is chi with RequestID, Recoverer, structured request logging, and
// permissive CORS. Authorization for per-user routes is a Gate that resolves
// the session cookie to a user and checks subscription eligibility before
// the handler runs; handlers read the resolved user from the request
// context. Errors are returned as {"error": message} JSON with domain
// sentinels mapped to 400/401/403/404 and everything else collapsed to 500.
package httpapi
