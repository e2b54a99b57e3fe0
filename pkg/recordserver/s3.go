package recordserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/vango-dev/appstore/pkg/record"
)

// S3API is the subset of *s3.Client used by S3Backend.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Backend stores each record as a JSON object at
// prefix/model/id.json.
//
// Put is a read-merge-write without conditional writes; concurrent writers
// to the same record can lose updates.
type S3Backend struct {
	client S3API
	bucket string
	prefix string
}

var _ Backend = (*S3Backend)(nil)

// NewS3Backend creates an S3Backend.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	backend := recordserver.NewS3Backend(s3.NewFromConfig(cfg), "my-bucket", "records")
func NewS3Backend(client S3API, bucket, prefix string) *S3Backend {
	return &S3Backend{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

func (b *S3Backend) modelPrefix(model string) string {
	if b.prefix == "" {
		return model + "/"
	}
	return b.prefix + "/" + model + "/"
}

func (b *S3Backend) key(model, id string) string {
	return b.modelPrefix(model) + id + ".json"
}

func (b *S3Backend) List(ctx context.Context, model string) ([]record.Record, error) {
	out := []record.Record{}
	p := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(b.modelPrefix(model)),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", model, err)
		}
		for _, obj := range page.Contents {
			name := path.Base(aws.ToString(obj.Key))
			if !strings.HasSuffix(name, ".json") {
				continue
			}
			r, err := b.Get(ctx, model, strings.TrimSuffix(name, ".json"))
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
	}
	return out, nil
}

func (b *S3Backend) Get(ctx context.Context, model, id string) (record.Record, error) {
	resp, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(model, id)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s/%s: %w", model, id, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", model, id, err)
	}
	var r record.Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", model, id, err)
	}
	return r, nil
}

func (b *S3Backend) Put(ctx context.Context, model, id string, fields record.Record) (record.Record, error) {
	r, err := b.Get(ctx, model, id)
	if errors.Is(err, ErrNotFound) {
		r = record.Record{}
	} else if err != nil {
		return nil, err
	}
	r.Merge(fields)
	r[record.DefaultIDAttribute] = id

	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode %s/%s: %w", model, id, err)
	}
	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(b.key(model, id)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("put %s/%s: %w", model, id, err)
	}
	return r, nil
}

func (b *S3Backend) Delete(ctx context.Context, model, id string) error {
	if _, err := b.Get(ctx, model, id); err != nil {
		return err
	}
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(model, id)),
	})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", model, id, err)
	}
	return nil
}
