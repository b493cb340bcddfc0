// Package auth implements magic link authentication: a login request creates
// (or reuses) the user, opens a session, and issues a signed one-hour token
// embedding the session id. Verifying the token authenticates the browser by
// setting the session cookie.
//
// Login and checkout both get-or-create users by email on independent code
// paths with no cross-locking; a race between the two for the same unseen
// email can create two rows. Known, accepted, see the repository design notes.
package auth
