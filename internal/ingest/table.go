// Package ingest implements the upload pipeline: CSV parsing, schema-driven
// normalization, chunking, gzip CSV encoding and object-store upload.
package ingest

// RawTable is the parsed CSV exactly as read: a header and ordered rows of
// string cells. It lives for a single upload request.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// NormalizedTable is a RawTable after schema coercion: every row has exactly
// len(Columns) cells, in canonical schema column order.
type NormalizedTable struct {
	Columns []string
	Rows    [][]string
	// Warnings counts cells that failed type coercion and were replaced by
	// the empty-string null sentinel.
	Warnings int
}

// Chunk is a contiguous, order-preserving slice of normalized rows.
// Index is 1-based and sequential within the upload.
type Chunk struct {
	Index int
	Rows  [][]string
}

// UploadStatus is the overall outcome of one upload request.
type UploadStatus string

const (
	StatusSuccess        UploadStatus = "success"
	StatusPartialFailure UploadStatus = "partial_failure"
)

// UploadResult summarizes one processed upload.
type UploadResult struct {
	Status     UploadStatus `json:"status"`
	RecordType string       `json:"record_type"`
	BatchID    string       `json:"batch_id"`
	NumChunks  int          `json:"num_chunks"`
	Uploaded   int          `json:"uploaded"`
	Rows       int          `json:"rows"`
	Warnings   int          `json:"warnings"`
	Keys       []string     `json:"keys,omitempty"`
	// FailedChunk is the 1-based index of the first chunk whose write
	// failed; zero when every chunk was written.
	FailedChunk int `json:"failed_chunk,omitempty"`
}
