package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/yourorg/data-lake-api/internal/metrics"
	"github.com/yourorg/data-lake-api/internal/schema"
	"github.com/yourorg/data-lake-api/internal/storage"
)

var (
	ErrEmptyFilename = errors.New("empty filename")
	ErrNotCSV        = errors.New("file must have a .csv extension")
	ErrMalformedCSV  = errors.New("malformed csv")
)

// IsClientError reports whether err is the uploader's fault (HTTP 400
// territory) rather than an object-store failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrEmptyFilename) ||
		errors.Is(err, ErrNotCSV) ||
		errors.Is(err, ErrMalformedCSV) ||
		errors.Is(err, ErrSchemaViolation) ||
		errors.Is(err, schema.ErrUnknownRecordType)
}

// Pipeline drives one upload end to end: validate, normalize, chunk, encode
// and write each chunk to the data-lake bucket.
type Pipeline struct {
	store     storage.ObjectStore
	bucket    string
	chunkSize int
	log       *zap.Logger
}

func NewPipeline(store storage.ObjectStore, bucket string, chunkSize int, log *zap.Logger) *Pipeline {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{store: store, bucket: bucket, chunkSize: chunkSize, log: log}
}

// Run processes a single uploaded file. Validation and normalization errors
// return before anything is written. Chunk writes happen in index order and
// stop at the first failure; the returned result then reports how many
// chunks made it and which index failed, alongside a non-nil error.
func (p *Pipeline) Run(ctx context.Context, file []byte, filename, recordType string) (UploadResult, error) {
	if strings.TrimSpace(filename) == "" {
		return UploadResult{}, ErrEmptyFilename
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return UploadResult{}, fmt.Errorf("%w: %q", ErrNotCSV, filename)
	}
	s, err := schema.Lookup(recordType)
	if err != nil {
		return UploadResult{}, err
	}
	filename = sanitizeFilename(filename)

	raw, err := parseCSV(bytes.NewReader(file))
	if err != nil {
		return UploadResult{}, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}
	table, err := Normalize(raw, s)
	if err != nil {
		return UploadResult{}, err
	}
	metrics.RowsNormalized.Add(float64(len(table.Rows)))
	metrics.CellsCoerced.Add(float64(table.Warnings))

	chunks := Chunks(table, p.chunkSize)
	batchID := NewBatchID()

	result := UploadResult{
		Status:     StatusSuccess,
		RecordType: s.Name,
		BatchID:    batchID,
		NumChunks:  len(chunks),
		Rows:       len(table.Rows),
		Warnings:   table.Warnings,
		Keys:       make([]string, 0, len(chunks)),
	}
	for _, c := range chunks {
		payload, err := EncodeChunk(table.Columns, c)
		if err != nil {
			return result, err
		}
		key := fmt.Sprintf("%s/%s/%s_part%d.csv.gz", s.Name, batchID, filename, c.Index)
		if err := p.store.Put(ctx, p.bucket, key, bytes.NewReader(payload)); err != nil {
			metrics.ChunkUploadFailures.Inc()
			p.log.Error("chunk upload failed",
				zap.String("record_type", s.Name),
				zap.String("batch_id", batchID),
				zap.Int("chunk", c.Index),
				zap.Error(err))
			result.Status = StatusPartialFailure
			result.FailedChunk = c.Index
			return result, fmt.Errorf("upload chunk %d/%d: %w", c.Index, len(chunks), err)
		}
		metrics.ChunksUploaded.Inc()
		result.Uploaded++
		result.Keys = append(result.Keys, key)
	}
	p.log.Info("upload complete",
		zap.String("record_type", s.Name),
		zap.String("batch_id", batchID),
		zap.Int("rows", result.Rows),
		zap.Int("chunks", result.NumChunks),
		zap.Int("warnings", result.Warnings))
	return result, nil
}

// parseCSV reads the whole upload into a RawTable. The first record is the
// header; ragged rows are tolerated here and resolved by the normalizer.
func parseCSV(r io.Reader) (RawTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return RawTable{}, fmt.Errorf("read header: %w", err)
	}
	rows, err := cr.ReadAll()
	if err != nil {
		return RawTable{}, err
	}
	return RawTable{Header: header, Rows: rows}, nil
}

// sanitizeFilename strips any path components and characters that have no
// business in an object key.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
