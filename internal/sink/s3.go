package sink

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/alfredjeanlab/synth/internal/errkit"
	"github.com/alfredjeanlab/synth/internal/value"
)

func init() {
	// Both schemes resolve an optional S3-compatible endpoint from the
	// "endpoint" query parameter (e.g. "minio://bucket/prefix?endpoint=http://localhost:9000").
	Register("s3", openS3)
	Register("minio", openS3)
}

// s3Sink buffers one collection's records as NDJSON in memory and uploads
// them as a single object on End, mirroring internal/sync/s3.go's
// upload-a-complete-buffer shape rather than incremental multipart writes.
type s3Sink struct {
	client *s3.Client
	bucket string
	prefix string

	mu      sync.Mutex
	buffers map[string]*bytes.Buffer
}

func openS3(ctx context.Context, u *url.URL) (Sink, error) {
	region := u.Query().Get("region")
	if region == "" {
		region = "us-east-1"
	}
	endpoint := u.Query().Get("endpoint")

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, errkit.Sink("", fmt.Errorf("loading AWS config: %w", err))
	}

	var opts []func(*s3.Options)
	if endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	return &s3Sink{
		client:  s3.NewFromConfig(cfg, opts...),
		bucket:  u.Host,
		prefix:  strings.TrimPrefix(u.Path, "/"),
		buffers: make(map[string]*bytes.Buffer),
	}, nil
}

func (s *s3Sink) key(collection string) string {
	if s.prefix == "" {
		return collection + ".ndjson"
	}
	return s.prefix + "/" + collection + ".ndjson"
}

func (s *s3Sink) Begin(context.Context, string) error {
	return nil
}

func (s *s3Sink) Write(_ context.Context, collection string, record value.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf, ok := s.buffers[collection]
	if !ok {
		buf = &bytes.Buffer{}
		s.buffers[collection] = buf
	}
	buf.Write(value.JSON(record))
	buf.WriteByte('\n')
	return nil
}

func (s *s3Sink) End(ctx context.Context, collection string) error {
	s.mu.Lock()
	buf, ok := s.buffers[collection]
	delete(s.buffers, collection)
	s.mu.Unlock()
	if !ok {
		buf = &bytes.Buffer{}
	}

	contentType := "application/x-ndjson"
	key := s.key(collection)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: &contentType,
	})
	if err != nil {
		return errkit.Sink(collection, fmt.Errorf("s3 put object %s: %w", key, err))
	}
	return nil
}

// Commit is a no-op: each collection is already uploaded as its own object
// on End, so there is nothing left to flush at the end of the run.
func (s *s3Sink) Commit(context.Context) error { return nil }

func (s *s3Sink) Close() error { return nil }
