// Package auth resolves who is editing. Editing never requires a signed-in
// user; saving and listing saved documents do.
package auth

import (
	"context"
	"errors"
)

// ErrNotAuthenticated is returned by operations that need a signed-in user
var ErrNotAuthenticated = errors.New("sign in to save documents")

// Identity is the user behind a request
type Identity struct {
	UserID   string `json:"user_id,omitempty"`
	SignedIn bool   `json:"signed_in"`
}

// Anonymous is the identity of a user who has not signed in
func Anonymous() Identity {
	return Identity{}
}

// SignedInAs returns the identity of a signed-in user
func SignedInAs(userID string) Identity {
	return Identity{UserID: userID, SignedIn: userID != ""}
}

// Require returns ErrNotAuthenticated unless the identity is signed in
func (i Identity) Require() error {
	if !i.SignedIn || i.UserID == "" {
		return ErrNotAuthenticated
	}
	return nil
}

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a context carrying the identity
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext returns the identity attached to ctx, or Anonymous
func FromContext(ctx context.Context) Identity {
	id, ok := ctx.Value(identityKey).(Identity)
	if !ok {
		return Anonymous()
	}
	return id
}
