// Package models defines the client-side domain types persisted in the local
// database and handed to the UI layer.
package models

import (
	"time"

	"github.com/dmitrijs2005/gigbook/internal/cryptox"
	"github.com/google/uuid"
)

// LocalIDPrefix marks ids generated on the device. It only keeps local ids
// visually distinct from server ids; code distinguishes identities through
// Identity, never through the prefix.
const LocalIDPrefix = "local-"

// NewLocalUserID returns a fresh device-generated user id.
func NewLocalUserID() string {
	return LocalIDPrefix + uuid.NewString()
}

// User is one identity row. Email is stored normalized.
type User struct {
	ID    string
	Email string

	// ServerID is the server-issued id this row is bound to, empty for
	// local-only identities. When the row was created from a remote sign-in
	// ServerID equals ID.
	ServerID string

	// Password holds placeholder material for rows created from a remote sign-in.
	Password cryptox.PasswordMaterial

	CreatedAt time.Time
}

// Identity returns the tagged identity of u.
func (u *User) Identity() Identity {
	if u.ServerID != "" {
		return RemoteIdentity{ID: u.ID, ServerID: u.ServerID}
	}
	return LocalIdentity{ID: u.ID}
}

// Identity is either LocalIdentity or RemoteIdentity.
type Identity interface {
	UserID() string
	isIdentity()
}

// LocalIdentity was created and authenticated entirely on-device.
type LocalIdentity struct {
	ID string
}

func (l LocalIdentity) UserID() string { return l.ID }
func (LocalIdentity) isIdentity()      {}

// RemoteIdentity is bound to a server-issued id. ID is the local row id,
// which may differ from ServerID when a pre-existing local row was reused.
type RemoteIdentity struct {
	ID       string
	ServerID string
}

func (r RemoteIdentity) UserID() string { return r.ID }
func (RemoteIdentity) isIdentity()      {}

// CurrentUser is the handle exposed to the UI layer.
type CurrentUser struct {
	ID       string
	Email    string
	Identity Identity
}

// NewCurrentUser builds the UI handle for u.
func NewCurrentUser(u *User) *CurrentUser {
	return &CurrentUser{ID: u.ID, Email: u.Email, Identity: u.Identity()}
}

// IsRemote reports whether the user is bound to a server identity.
func (c *CurrentUser) IsRemote() bool {
	_, ok := c.Identity.(RemoteIdentity)
	return ok
}
