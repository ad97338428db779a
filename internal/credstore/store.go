// Package credstore holds client-side credentials the way a browser holds
// local storage: a flat string key-value namespace with get, set and delete.
package credstore

import (
	"context"
	"errors"
)

// Well-known keys.
const (
	// AccessTokenKey is the local storage key of the bearer access token.
	AccessTokenKey = "access_token"
	// CookieKey holds the serialized cookie string (the document.cookie equivalent).
	CookieKey = "cookie"
)

// ErrNotFound is returned by Get when the key has never been set or was deleted.
var ErrNotFound = errors.New("credstore: key not found")

// Store is a key-value store for credentials. Implementations are safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
