package bank

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/shadematch/codec"
)

// magic is the first header field of a serialized bank snapshot.
const magic = "shadebank"

// snapshotVersion is bumped on incompatible format changes.
const snapshotVersion = 1

type snapshot struct {
	Dim     int           `json:"dim"`
	Version uint64        `json:"version"`
	Points  []SamplePoint `json:"points"`
}

// Save writes the bank to w as a self-describing snapshot: a one-line header
// naming the format version and codec, followed by the codec payload.
func (b *Bank) Save(w io.Writer, c codec.Codec) error {
	if c == nil {
		c = codec.Default
	}

	b.mu.RLock()
	snap := snapshot{
		Dim:     b.dim,
		Version: b.version,
		Points:  b.points,
	}
	data, err := c.Marshal(snap)
	b.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if _, err := fmt.Fprintf(w, "%s:v%d:%s\n", magic, snapshotVersion, c.Name()); err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Load reads a snapshot written by Save. The codec is selected from the
// header, so the caller does not need to know how the file was encoded.
func Load(r io.Reader) (*Bank, error) {
	br := bufio.NewReader(r)
	header, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read snapshot header: %w", err)
	}

	fields := strings.Split(strings.TrimSuffix(header, "\n"), ":")
	if len(fields) != 3 || fields[0] != magic {
		return nil, fmt.Errorf("not a shade-bank snapshot")
	}
	if fields[1] != fmt.Sprintf("v%d", snapshotVersion) {
		return nil, fmt.Errorf("unsupported snapshot version %q", fields[1])
	}
	c, ok := codec.ByName(fields[2])
	if !ok {
		return nil, fmt.Errorf("unknown snapshot codec %q", fields[2])
	}

	data, err := io.ReadAll(br)
	if err != nil {
		return nil, err
	}
	var snap snapshot
	if err := c.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	b, err := New(snap.Dim)
	if err != nil {
		return nil, err
	}
	if err := b.Append(snap.Points...); err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.version = snap.Version
	b.mu.Unlock()
	return b, nil
}

// FromRows builds a bank from the boundary persistence format: one row per
// sample, input coordinates followed by image coordinates.
func FromRows(rows [][]float64, dim int) (*Bank, error) {
	b, err := New(dim)
	if err != nil {
		return nil, err
	}
	points := make([]SamplePoint, len(rows))
	for i, row := range rows {
		if len(row) != 2*dim {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(row), 2*dim)
		}
		points[i] = SamplePoint{Input: row[:dim], Image: row[dim:]}
	}
	if err := b.Append(points...); err != nil {
		return nil, err
	}
	return b, nil
}

// Rows exports the bank in the boundary persistence format consumed by
// FromRows.
func (b *Bank) Rows() [][]float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rows := make([][]float64, len(b.points))
	for i, p := range b.points {
		row := make([]float64, 0, 2*b.dim)
		row = append(row, p.Input...)
		row = append(row, p.Image...)
		rows[i] = row
	}
	return rows
}
