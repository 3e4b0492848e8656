// Package bankstore provides storage backends for shade-bank snapshots.
//
// A shade bank is an append-only record of every measurement made against a
// device, and re-measuring is expensive, so banks are saved between runs and
// shared across machines. Snapshots are small, self-describing files (see
// bank.Save), read and written whole.
//
// # Built-in Implementations
//
//   - MemoryStore: In-memory store for testing
//   - LocalStore: Local filesystem with atomic replacement
//   - minio.Store: MinIO and S3-compatible object storage
//
// # Custom Implementations
//
// Implement the Store interface to support custom backends:
//
//	type Store interface {
//	    Put(ctx, name, data) error         // Atomic write
//	    Get(ctx, name) ([]byte, error)
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Get must return an error satisfying errors.Is(err, ErrNotFound) for
// missing snapshots.
package bankstore
