// Package cookie emulates document.cookie on top of a credential store:
// a single "name=value; name=value" string that the server populates through
// Set-Cookie and the client reads back with a deliberately simple parser.
package cookie

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/Checker-Finance/blogctl/internal/credstore"
)

// RefreshTokenName is the cookie carrying the refresh token.
const RefreshTokenName = "refresh_token"

// Lookup returns the value of key in a cookie string.
// Each ";"-separated item loses its first space, is split on every "=", and
// the second field is returned as-is: no URL decoding, and anything after a
// second "=" is dropped. ok is false when no item carries the key or the
// matching item has no "=".
func Lookup(header, key string) (value string, ok bool) {
	for _, item := range strings.Split(header, ";") {
		item = strings.Replace(item, " ", "", 1)
		parts := strings.Split(item, "=")
		if parts[0] != key {
			continue
		}
		if len(parts) < 2 {
			return "", false
		}
		return parts[1], true
	}
	return "", false
}

// Jar stores the cookie string under credstore.CookieKey.
type Jar struct {
	mu    sync.Mutex
	store credstore.Store
}

// NewJar returns a Jar persisting into store.
func NewJar(store credstore.Store) *Jar {
	return &Jar{store: store}
}

// String returns the raw cookie string; empty when nothing was ever stored.
func (j *Jar) String(ctx context.Context) (string, error) {
	raw, err := j.store.Get(ctx, credstore.CookieKey)
	if errors.Is(err, credstore.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("cookie: load: %w", err)
	}
	return raw, nil
}

// Get returns the value of the named cookie, or "" when absent.
func (j *Jar) Get(ctx context.Context, name string) (string, error) {
	raw, err := j.String(ctx)
	if err != nil {
		return "", err
	}
	v, _ := Lookup(raw, name)
	return v, nil
}

// Set adds or replaces the named cookie.
func (j *Jar) Set(ctx context.Context, name, value string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	raw, err := j.String(ctx)
	if err != nil {
		return err
	}
	return j.save(ctx, upsert(raw, name, value, true))
}

// Remove drops the named cookie.
func (j *Jar) Remove(ctx context.Context, name string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	raw, err := j.String(ctx)
	if err != nil {
		return err
	}
	return j.save(ctx, upsert(raw, name, "", false))
}

// Capture applies the Set-Cookie headers of a response to the jar.
// Cookies with an expired Max-Age or an empty value are removed.
func (j *Jar) Capture(ctx context.Context, header http.Header) error {
	cookies := (&http.Response{Header: header}).Cookies()
	if len(cookies) == 0 {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	raw, err := j.String(ctx)
	if err != nil {
		return err
	}
	for _, c := range cookies {
		keep := c.MaxAge >= 0 && c.Value != ""
		raw = upsert(raw, c.Name, c.Value, keep)
	}
	return j.save(ctx, raw)
}

func (j *Jar) save(ctx context.Context, raw string) error {
	if raw == "" {
		if err := j.store.Delete(ctx, credstore.CookieKey); err != nil {
			return fmt.Errorf("cookie: clear: %w", err)
		}
		return nil
	}
	if err := j.store.Set(ctx, credstore.CookieKey, raw); err != nil {
		return fmt.Errorf("cookie: save: %w", err)
	}
	return nil
}

// upsert rewrites raw with name set to value (keep) or removed (!keep),
// preserving the order of the other items.
func upsert(raw, name, value string, keep bool) string {
	var items []string
	replaced := false
	for _, item := range strings.Split(raw, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if n, _, _ := strings.Cut(item, "="); n == name {
			if keep && !replaced {
				items = append(items, name+"="+value)
				replaced = true
			}
			continue
		}
		items = append(items, item)
	}
	if keep && !replaced {
		items = append(items, name+"="+value)
	}
	return strings.Join(items, "; ")
}
