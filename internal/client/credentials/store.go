// Package credentials is the secure key-value store for session secrets:
// access and refresh tokens, the legacy token alias and the current session
// user id. Its lifecycle is independent of the local database file.
//
// Implementations must treat Delete of an absent key as a no-op and must
// never log values.
package credentials

import (
	"context"
	"errors"
	"fmt"
)

// Well-known keys. They are stable across application versions.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	// KeyLegacyToken mirrors KeyAccessToken for older call sites.
	KeyLegacyToken   = "token"
	KeySessionUserID = "session_user_id"
)

// TokenKeys are purged together when a refresh fails.
var TokenKeys = []string{KeyAccessToken, KeyRefreshToken, KeyLegacyToken}

// AllKeys are cleared on sign-out and local reset.
var AllKeys = []string{KeyAccessToken, KeyRefreshToken, KeyLegacyToken, KeySessionUserID}

// Store is a scoped secure key-value store. Get returns "" and a nil error
// for absent keys.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// SaveTokens persists a token pair and keeps the legacy alias in sync.
func SaveTokens(ctx context.Context, s Store, access, refresh string) error {
	if err := s.Set(ctx, KeyAccessToken, access); err != nil {
		return err
	}
	if err := s.Set(ctx, KeyLegacyToken, access); err != nil {
		return err
	}
	if err := s.Set(ctx, KeyRefreshToken, refresh); err != nil {
		return err
	}
	return nil
}

// AccessToken reads the access token, falling back to the legacy alias.
func AccessToken(ctx context.Context, s Store) (string, error) {
	token, err := s.Get(ctx, KeyAccessToken)
	if err != nil {
		return "", err
	}
	if token != "" {
		return token, nil
	}
	return s.Get(ctx, KeyLegacyToken)
}

// DeleteAll deletes every key, attempting all of them even if some fail.
func DeleteAll(ctx context.Context, s Store, keys ...string) error {
	var errs []error
	for _, k := range keys {
		if err := s.Delete(ctx, k); err != nil {
			errs = append(errs, fmt.Errorf("delete credential %q: %w", k, err))
		}
	}
	return errors.Join(errs...)
}
