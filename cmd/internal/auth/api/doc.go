// Package authapi exposes the HTTP authentication surface: register, login,
// logout and the current-user endpoint, plus the session cookie transport and
// the RequireSession middleware used by the rest of the API.
package authapi
