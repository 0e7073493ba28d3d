package snapshot

import (
	"context"
	"encoding/base64"
	"fmt"
)

// Bridge stores a full database image base64-encoded under one key.
type Bridge struct {
	storage Storage
	key     string
}

func NewBridge(storage Storage, key string) *Bridge {
	return &Bridge{storage: storage, key: key}
}

func (b *Bridge) Key() string { return b.key }

// Load returns the decoded image; ok is false when nothing is stored.
func (b *Bridge) Load(ctx context.Context) ([]byte, bool, error) {
	encoded, ok, err := b.storage.GetItem(ctx, b.key)
	if err != nil || !ok || encoded == "" {
		return nil, false, err
	}
	image, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, false, fmt.Errorf("decode %s: %w: %v", b.key, ErrCorrupted, err)
	}
	return image, true, nil
}

func (b *Bridge) Save(ctx context.Context, image []byte) error {
	return b.storage.SetItem(ctx, b.key, base64.StdEncoding.EncodeToString(image))
}

func (b *Bridge) Clear(ctx context.Context) error {
	return b.storage.RemoveItem(ctx, b.key)
}
