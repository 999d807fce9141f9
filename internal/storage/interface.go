package storage

import (
	"context"
)

// Storage is the persistence port: raw values under named keys.
// Get returns model.ErrKeyNotFound for a missing key. Remove of a missing key is not an error.
type Storage interface {
	Get(ctx context.Context, key Key) ([]byte, error)
	Set(ctx context.Context, key Key, value []byte) error
	Remove(ctx context.Context, key Key) error
}
