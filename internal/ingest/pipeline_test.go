package ingest

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore records every Put and can fail selected chunk indices.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failKey func(key string) bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) Put(ctx context.Context, bucket, key string, body io.Reader) error {
	if f.failKey != nil && f.failKey(key) {
		return errors.New("injected store failure")
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[bucket+"/"+key] = b
	return nil
}

func (f *fakeStore) Get(ctx context.Context, bucket, key string) (io.ReadCloser, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[bucket+"/"+key]
	if !ok {
		return nil, 0, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(b)), int64(len(b)), nil
}

func (f *fakeStore) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.objects))
	for k := range f.objects {
		out = append(out, k)
	}
	return out
}

func departmentsCSV(rows int) []byte {
	var b strings.Builder
	b.WriteString("id,department\n")
	for i := 1; i <= rows; i++ {
		fmt.Fprintf(&b, "%d,department %d\n", i, i)
	}
	return []byte(b.String())
}

func TestRunEndToEnd(t *testing.T) {
	store := newFakeStore()
	p := NewPipeline(store, "lake", 1000, nil)

	res, err := p.Run(context.Background(), departmentsCSV(2500), "departments.csv", "departments")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 3, res.NumChunks)
	assert.Equal(t, 3, res.Uploaded)
	assert.Equal(t, 2500, res.Rows)
	assert.Zero(t, res.Warnings)
	require.Len(t, res.Keys, 3)
	for i, key := range res.Keys {
		assert.Equal(t, fmt.Sprintf("departments/%s/departments.csv_part%d.csv.gz", res.BatchID, i+1), key)
	}

	// Decode each stored part back and verify sizes and ordering.
	wantSizes := []int{1000, 1000, 500}
	next := 1
	for i, key := range res.Keys {
		rc, _, err := store.Get(context.Background(), "lake", key)
		require.NoError(t, err)
		gr, err := gzip.NewReader(rc)
		require.NoError(t, err)
		records, err := csv.NewReader(gr).ReadAll()
		require.NoError(t, err)
		require.Equal(t, []string{"id", "department"}, records[0])
		require.Len(t, records[1:], wantSizes[i])
		for _, row := range records[1:] {
			assert.Equal(t, fmt.Sprint(next), row[0])
			next++
		}
	}
}

func TestRunUnknownTypeWritesNothing(t *testing.T) {
	store := newFakeStore()
	p := NewPipeline(store, "lake", 1000, nil)
	_, err := p.Run(context.Background(), departmentsCSV(5), "departments.csv", "invoices")
	require.Error(t, err)
	assert.True(t, IsClientError(err))
	assert.Empty(t, store.keys())
}

func TestRunValidation(t *testing.T) {
	store := newFakeStore()
	p := NewPipeline(store, "lake", 1000, nil)

	_, err := p.Run(context.Background(), departmentsCSV(5), "", "departments")
	assert.ErrorIs(t, err, ErrEmptyFilename)

	_, err = p.Run(context.Background(), departmentsCSV(5), "departments.xlsx", "departments")
	assert.ErrorIs(t, err, ErrNotCSV)

	assert.Empty(t, store.keys())
}

func TestRunSchemaViolationWritesNothing(t *testing.T) {
	store := newFakeStore()
	p := NewPipeline(store, "lake", 1000, nil)
	csvData := []byte("id,job\n1,Analyst\n,Engineer\n")
	_, err := p.Run(context.Background(), csvData, "jobs.csv", "jobs")
	require.ErrorIs(t, err, ErrSchemaViolation)
	assert.True(t, IsClientError(err))
	assert.Empty(t, store.keys())
}

func TestRunAbortsAtFirstFailedChunk(t *testing.T) {
	store := newFakeStore()
	store.failKey = func(key string) bool { return strings.HasSuffix(key, "_part2.csv.gz") }
	p := NewPipeline(store, "lake", 1000, nil)

	res, err := p.Run(context.Background(), departmentsCSV(2500), "departments.csv", "departments")
	require.Error(t, err)
	assert.False(t, IsClientError(err))
	assert.Equal(t, StatusPartialFailure, res.Status)
	assert.Equal(t, 3, res.NumChunks)
	assert.Equal(t, 1, res.Uploaded)
	assert.Equal(t, 2, res.FailedChunk)
	// First chunk is durable, third was never attempted.
	assert.Len(t, store.keys(), 1)
}

func TestRunEmptyTableWritesNothing(t *testing.T) {
	store := newFakeStore()
	p := NewPipeline(store, "lake", 1000, nil)
	res, err := p.Run(context.Background(), []byte("id,department\n"), "departments.csv", "departments")
	require.NoError(t, err)
	assert.Equal(t, 0, res.NumChunks)
	assert.Empty(t, store.keys())
}

func TestRunAliasRecordType(t *testing.T) {
	store := newFakeStore()
	p := NewPipeline(store, "lake", 1000, nil)
	csvData := []byte("id,name,datetime,department_id,job_id\n1,Ann,2021-02-01T09:00:00Z,2,3\n")
	res, err := p.Run(context.Background(), csvData, "hires.csv", "employees")
	require.NoError(t, err)
	assert.Equal(t, "hired_employees", res.RecordType)
	require.Len(t, res.Keys, 1)
	assert.True(t, strings.HasPrefix(res.Keys[0], "hired_employees/"))
}

func TestRunConcurrentUploadsDisjointKeys(t *testing.T) {
	store := newFakeStore()
	p := NewPipeline(store, "lake", 100, nil)
	data := departmentsCSV(250)

	const n = 8
	results := make([]UploadResult, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := p.Run(context.Background(), data, "departments.csv", "departments")
			if err != nil {
				t.Errorf("concurrent run %d: %v", i, err)
				return
			}
			results[i] = res
		}(i)
	}
	wg.Wait()

	seenBatch := make(map[string]bool)
	seenKey := make(map[string]bool)
	for _, res := range results {
		assert.False(t, seenBatch[res.BatchID], "batch id reused")
		seenBatch[res.BatchID] = true
		for _, k := range res.Keys {
			assert.False(t, seenKey[k], "key collision: %s", k)
			seenKey[k] = true
		}
	}
	// Every chunk of every upload landed.
	assert.Len(t, store.keys(), n*3)
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"departments.csv":       "departments.csv",
		"../../etc/passwd.csv":  "passwd.csv",
		"dir\\inner\\file.csv":  "file.csv",
		"weird name (1).csv":    "weird_name__1_.csv",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Fatalf("sanitizeFilename(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestNewBatchIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewBatchID()
		if seen[id] {
			t.Fatalf("duplicate batch id %s", id)
		}
		seen[id] = true
	}
}
