// Package userauth implements a stateless credential and session-token
// lifecycle: account registration with uniqueness enforcement, password
// verification, HS256 signed token issuance, and token validation at the
// request boundary.
//
// The package is wired by constructor injection: a Users store backs a
// UserProvider, the UserProvider backs an Auther, and the Auther's token
// validation feeds the tokenware middleware. No session state is held
// server side; a token is valid iff its signature checks out against the
// shared secret and it has not expired.
package userauth
