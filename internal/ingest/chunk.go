package ingest

// DefaultChunkSize is the number of rows written per object-store part.
const DefaultChunkSize = 1000

// Chunks partitions a normalized table into contiguous row batches of at
// most size rows, preserving order. Chunk n holds rows
// [(n-1)*size, n*size). An empty table yields no chunks.
func Chunks(t NormalizedTable, size int) []Chunk {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if len(t.Rows) == 0 {
		return nil
	}
	n := (len(t.Rows) + size - 1) / size
	chunks := make([]Chunk, 0, n)
	for i := 0; i < len(t.Rows); i += size {
		end := i + size
		if end > len(t.Rows) {
			end = len(t.Rows)
		}
		chunks = append(chunks, Chunk{Index: len(chunks) + 1, Rows: t.Rows[i:end]})
	}
	return chunks
}
