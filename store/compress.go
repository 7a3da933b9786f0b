package store

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
)

// MaxSnapshotSize bounds a decompressed snapshot.
const MaxSnapshotSize = 64 << 20

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("store: decompress snapshot: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(io.LimitReader(r, MaxSnapshotSize+1))
	if err != nil {
		return nil, fmt.Errorf("store: decompress snapshot: %w", err)
	}
	if len(out) > MaxSnapshotSize {
		return nil, ErrSnapshotTooLarge
	}
	return out, nil
}
