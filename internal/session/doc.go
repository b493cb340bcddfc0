// Package session holds the server-issued bearer credential that maps an
// opaque id to a user and expiry.
//
// A session is valid iff now < expiry. Every store enforces that in Get, so
// expired sessions are indistinguishable from missing ones for all consumers.
// Sessions are deleted explicitly on logout and otherwise left to expire;
// there is no background sweep.
//
// Three Store implementations exist: Postgres (the default, sessions table),
// Redis (TTL-evicted, selected with SESSION_STORE=redis), and an in-memory
// store for tests.
package session
