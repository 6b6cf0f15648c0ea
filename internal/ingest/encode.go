package ingest

import (
	"bytes"
	"compress/gzip"
	"encoding/csv"
	"fmt"
)

// EncodeChunk serializes a chunk as gzip-compressed CSV: header first, then
// the chunk's rows in order. The payload round-trips through any standard
// CSV parser after decompression.
func EncodeChunk(header []string, c Chunk) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	w := csv.NewWriter(gz)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("encode chunk %d header: %w", c.Index, err)
	}
	if err := w.WriteAll(c.Rows); err != nil {
		return nil, fmt.Errorf("encode chunk %d rows: %w", c.Index, err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("compress chunk %d: %w", c.Index, err)
	}
	return buf.Bytes(), nil
}
