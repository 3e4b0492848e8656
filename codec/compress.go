package codec

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"
)

// Gzip wraps an inner codec with gzip compression. Useful for shade banks
// with many measured rounds, where snapshots grow into the megabytes.
type Gzip struct {
	Inner Codec
}

func (c Gzip) inner() Codec {
	if c.Inner == nil {
		return Default
	}
	return c.Inner
}

// Marshal encodes with the inner codec and gzips the result.
func (c Gzip) Marshal(v any) ([]byte, error) {
	raw, err := c.inner().Marshal(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal gunzips the data and decodes with the inner codec.
func (c Gzip) Unmarshal(data []byte, v any) error {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return err
	}
	raw, err := io.ReadAll(zr)
	if err != nil {
		zr.Close()
		return err
	}
	if err := zr.Close(); err != nil {
		return err
	}
	return c.inner().Unmarshal(raw, v)
}

// Name returns the unique name of the codec.
func (c Gzip) Name() string { return c.inner().Name() + "+gzip" }

// LZ4 wraps an inner codec with lz4 compression. Faster than gzip at a
// slightly worse ratio.
type LZ4 struct {
	Inner Codec
}

func (c LZ4) inner() Codec {
	if c.Inner == nil {
		return Default
	}
	return c.Inner
}

// Marshal encodes with the inner codec and lz4-compresses the result.
func (c LZ4) Marshal(v any) ([]byte, error) {
	raw, err := c.inner().Marshal(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decompresses the data and decodes with the inner codec.
func (c LZ4) Unmarshal(data []byte, v any) error {
	zr := lz4.NewReader(bytes.NewReader(data))
	raw, err := io.ReadAll(zr)
	if err != nil {
		return err
	}
	return c.inner().Unmarshal(raw, v)
}

// Name returns the unique name of the codec.
func (c LZ4) Name() string { return c.inner().Name() + "+lz4" }
