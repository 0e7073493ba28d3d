// Package snapshot persists the in-memory register as a single base64 value
// in a key/value store.
package snapshot

import (
	"context"
	"errors"
)

var (
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	ErrCorrupted     = errors.New("stored snapshot is corrupted")
)

// Storage is a string key/value store in the shape of browser localStorage.
//
//go:generate mockgen -source=storage.go -destination=mock_storage_test.go -package=snapshot
//go:generate mockgen -source=storage.go -destination=../database/mock_storage_test.go -package=database
type Storage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}
