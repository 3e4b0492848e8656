package bankstore

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/hupe1980/shadematch/bank"
	"github.com/hupe1980/shadematch/codec"
)

// ErrNotFound is returned when a snapshot does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction for persisting shade-bank snapshots by name.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put writes a snapshot atomically, replacing any previous one.
	Put(ctx context.Context, name string, data []byte) error

	// Get reads a snapshot whole.
	Get(ctx context.Context, name string) ([]byte, error)

	// Delete removes a snapshot. Deleting a missing snapshot is not an error.
	Delete(ctx context.Context, name string) error

	// List returns all snapshot names with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Save serializes the bank with the given codec and writes it to the store.
// A nil codec falls back to codec.Default.
func Save(ctx context.Context, s Store, name string, b *bank.Bank, c codec.Codec) error {
	var buf bytes.Buffer
	if err := b.Save(&buf, c); err != nil {
		return fmt.Errorf("serialize bank: %w", err)
	}
	return s.Put(ctx, name, buf.Bytes())
}

// Load reads a snapshot from the store and reconstructs the bank. The codec
// is taken from the snapshot header.
func Load(ctx context.Context, s Store, name string) (*bank.Bank, error) {
	data, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return bank.Load(bytes.NewReader(data))
}
