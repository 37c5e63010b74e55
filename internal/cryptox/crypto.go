// Package cryptox holds the password material used by local-only identities.
// Passwords are stretched with argon2id and compared in constant time.
package cryptox

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/gigbook/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	SaltSize = 16
	KeySize  = 32
)

// PasswordMaterial is what a users row stores instead of a password.
type PasswordMaterial struct {
	Salt []byte
	Hash []byte
}

// DeriveKey stretches password with salt using argon2id.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, KeySize)
}

// HashPassword generates a fresh salt and derives the hash for password.
func HashPassword(password []byte) PasswordMaterial {
	salt := common.GenerateRandByteArray(SaltSize)
	return PasswordMaterial{Salt: salt, Hash: DeriveKey(password, salt)}
}

// Placeholder returns random material that no password can match. It is
// stored for identities that only ever authenticate against the server.
func Placeholder() PasswordMaterial {
	return PasswordMaterial{
		Salt: common.GenerateRandByteArray(SaltSize),
		Hash: common.GenerateRandByteArray(KeySize),
	}
}

// Verify reports whether password matches m.
func (m PasswordMaterial) Verify(password []byte) bool {
	if len(m.Salt) == 0 || len(m.Hash) == 0 {
		return false
	}
	candidate := DeriveKey(password, m.Salt)
	defer common.WipeByteArray(candidate)
	return subtle.ConstantTimeCompare(candidate, m.Hash) == 1
}
