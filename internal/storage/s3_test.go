package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeS3 struct {
	getBody       []byte
	getErr        error
	putLastBucket string
	putLastKey    string
	putLastBody   []byte
	putErr        error
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	rc := io.NopCloser(bytes.NewReader(f.getBody))
	cl := int64(len(f.getBody))
	return &s3.GetObjectOutput{Body: rc, ContentLength: &cl}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.putLastBucket = aws.ToString(in.Bucket)
	f.putLastKey = aws.ToString(in.Key)
	if in.Body != nil {
		b, _ := io.ReadAll(in.Body)
		f.putLastBody = b
	}
	return &s3.PutObjectOutput{}, nil
}

func TestPut(t *testing.T) {
	f := &fakeS3{}
	c := &S3Client{client: f}
	if err := c.Put(context.Background(), "lake", "departments/abc/d.csv_part1.csv.gz", bytes.NewReader([]byte("payload"))); err != nil {
		t.Fatalf("Put err: %v", err)
	}
	if f.putLastBucket != "lake" {
		t.Fatalf("bucket %q", f.putLastBucket)
	}
	if f.putLastKey != "departments/abc/d.csv_part1.csv.gz" {
		t.Fatalf("key %q", f.putLastKey)
	}
	if string(f.putLastBody) != "payload" {
		t.Fatalf("body %q", string(f.putLastBody))
	}
}

func TestPutError(t *testing.T) {
	f := &fakeS3{putErr: errors.New("boom")}
	c := &S3Client{client: f}
	if err := c.Put(context.Background(), "lake", "k", bytes.NewReader(nil)); err == nil {
		t.Fatal("expected error")
	}
}

func TestGet(t *testing.T) {
	f := &fakeS3{getBody: []byte("data-from-s3")}
	c := &S3Client{client: f}
	rc, sz, err := c.Get(context.Background(), "lake", "key/path.txt")
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	defer rc.Close()
	if sz != int64(len(f.getBody)) {
		t.Fatalf("size got %d want %d", sz, len(f.getBody))
	}
	b, _ := io.ReadAll(rc)
	if string(b) != string(f.getBody) {
		t.Fatalf("content mismatch: %q", string(b))
	}
}
