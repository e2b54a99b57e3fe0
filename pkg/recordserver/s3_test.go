package recordserver

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/appstore/pkg/record"
)

// fakeS3 is an in-memory bucket.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	failGet error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet != nil {
		return nil, f.failGet
	}
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func (f *fakeS3) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestS3BackendPutGet(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	b := NewS3Backend(fake, "bucket", "/records/")

	if _, err := b.Put(ctx, "users", "1", record.Record{"name": "Ada"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := b.Put(ctx, "users", "1", record.Record{"role": "admin"})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	want := record.Record{"id": "1", "name": "Ada", "role": "admin"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Put result mismatch (-want +got):\n%s", diff)
	}

	got, err = b.Get(ctx, "users", "1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Get mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"records/users/1.json"}, fake.keys()); diff != "" {
		t.Errorf("object keys mismatch (-want +got):\n%s", diff)
	}
}

func TestS3BackendNotFound(t *testing.T) {
	ctx := context.Background()
	b := NewS3Backend(newFakeS3(), "bucket", "")

	if _, err := b.Get(ctx, "users", "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get error = %v, want ErrNotFound", err)
	}
	if err := b.Delete(ctx, "users", "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete error = %v, want ErrNotFound", err)
	}
}

func TestS3BackendListAndDelete(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	b := NewS3Backend(fake, "bucket", "")

	for _, id := range []string{"a", "b"} {
		if _, err := b.Put(ctx, "users", id, record.Record{"name": id}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := b.Put(ctx, "posts", "p", record.Record{}); err != nil {
		t.Fatal(err)
	}

	got, err := b.List(ctx, "users")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []record.Record{
		{"id": "a", "name": "a"},
		{"id": "b", "name": "b"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}

	if err := b.Delete(ctx, "users", "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err = b.List(ctx, "users")
	if err != nil || len(got) != 1 || got[0]["id"] != "b" {
		t.Errorf("List after delete = %v, %v", got, err)
	}
}

func TestS3BackendGetError(t *testing.T) {
	fake := newFakeS3()
	fake.failGet = errors.New("access denied")
	b := NewS3Backend(fake, "bucket", "")

	_, err := b.Get(context.Background(), "users", "1")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("Get error = %v, want wrapped access error", err)
	}
	if _, err := b.Put(context.Background(), "users", "1", record.Record{}); err == nil {
		t.Error("Put should fail when the read fails")
	}
}
