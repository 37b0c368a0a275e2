// Package kvstore is the string-keyed persistent storage the favorites and
// comments stores write their JSON blobs to.
package kvstore

import (
	"context"
	"errors"
	"time"
)

// Fixed storage keys. The two favorites keys belong to the two favorites
// persistence variants and never coexist in one configuration.
const (
	KeyFavoriteIDs     = "rickandmorty_favorites"
	KeyFavoriteRecords = "rickAndMortyFavorites"
	KeyComments        = "rickandmorty_comments"
)

// ErrClosed is returned by backends used after Close.
var ErrClosed = errors.New("kvstore: store closed")

// WriteTimeout bounds a single detached read-modify-write.
const WriteTimeout = 5 * time.Second

// Detach keeps the values of ctx but drops its cancellation, bounded by
// WriteTimeout. Mutations persist under it so a request that ends early
// does not leave memory and storage out of sync.
func Detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), WriteTimeout)
}

// Store is a synchronous string key-value medium. A missing key is not an
// error: Get reports ok=false.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error

	// Name identifies the backend in logs and the infra endpoint.
	Name() string
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*Redis)(nil)
	_ Store = (*SQLite)(nil)
)
