// Package codec centralizes the encoding used for shade-bank snapshots.
//
// Codec selection is a breaking-change boundary: bytes persisted with one
// codec may not decode with another. Snapshot headers record the codec name
// so files stay self-describing.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "json+gzip":
		return Gzip{Inner: JSON{}}, true
	case "json+lz4":
		return LZ4{Inner: JSON{}}, true
	default:
		return nil, false
	}
}

// MustMarshal is a helper for internal tests.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}

// Default is the codec used when none is configured.
//
// Persisted files always record the codec name in their header, so changing
// the default never breaks existing snapshots.
var Default Codec = JSON{}
