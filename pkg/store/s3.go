package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/entrhq/trainer/pkg/workout"
)

// S3API is the subset of the S3 client used by ObjectStore.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Settings configures NewS3Client.
type S3Settings struct {
	Region string

	// Endpoint overrides the AWS endpoint, for MinIO and other compatible
	// services. Path-style addressing is used when it is set.
	Endpoint string

	// AccessKey and SecretKey select static credentials. When empty the
	// default AWS credential chain applies.
	AccessKey string
	SecretKey string
}

// NewS3Client builds an S3 client from settings.
func NewS3Client(ctx context.Context, settings S3Settings) (*s3.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(settings.Region),
	}
	if settings.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(settings.AccessKey, settings.SecretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("store: load aws config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if settings.Endpoint != "" {
			o.BaseEndpoint = aws.String(settings.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// ObjectStore keeps one object per unit under
// <prefix><identity>_workouts/<sequence>-<uuid>.json. Sequence numbers are
// zero-padded so lexical listing order is append order. A PUT either creates
// the whole object or nothing.
type ObjectStore struct {
	client S3API
	bucket string
	prefix string
	opts   options

	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewObjectStore returns a store writing to bucket under prefix. The bucket
// must already exist.
func NewObjectStore(client S3API, bucket, prefix string, opts ...Option) *ObjectStore {
	return &ObjectStore{
		client: client,
		bucket: bucket,
		prefix: prefix,
		opts:   newOptions(opts),
		now:    time.Now,
	}
}

func (s *ObjectStore) identityPrefix(identity string) string {
	return s.prefix + identity + strings.TrimSuffix(FileSuffix, ".json") + "/"
}

// nextSequence returns a strictly increasing nanosecond timestamp.
func (s *ObjectStore) nextSequence() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := s.now().UnixNano()
	if seq <= s.last {
		seq = s.last + 1
	}
	s.last = seq
	return seq
}

// Append puts the unit as a new object. Existing objects are never
// overwritten.
func (s *ObjectStore) Append(ctx context.Context, identity string, r workout.Record) error {
	if err := checkIdentity(identity); err != nil {
		return writeFailed("invalid identity", err)
	}
	unit, err := encodeUnit(r)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("%s%020d-%s.json", s.identityPrefix(identity), s.nextSequence(), uuid.New())
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(unit),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return writeFailed("failed to put object", err)
	}
	return nil
}

// LoadAll lists the identity's objects and decodes them in key order.
func (s *ObjectStore) LoadAll(ctx context.Context, identity string) ([]workout.Record, error) {
	if err := checkIdentity(identity); err != nil {
		return nil, readFailed("invalid identity", err)
	}

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.identityPrefix(identity)),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, readFailed("failed to list objects", err)
		}
		for _, obj := range page.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}
	}

	records := make([]workout.Record, 0, len(keys))
	for i, key := range keys {
		data, err := s.get(ctx, key)
		if err != nil {
			return nil, readFailed("failed to get object", err)
		}
		d := decoder{opts: s.opts, source: key}
		// Each object holds exactly one unit with its separator.
		body := bytes.TrimSuffix(data, []byte{'\n'})
		if len(data) == len(body) {
			if err := d.reject(i+1, fmt.Errorf("%w: missing record separator", workout.ErrMalformedUnit)); err != nil {
				return nil, err
			}
			continue
		}
		rec, ok, err := d.unit(i+1, body)
		if err != nil {
			return nil, err
		}
		if ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (s *ObjectStore) get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

// Close is a no-op; the client is owned by the caller.
func (s *ObjectStore) Close() error {
	return nil
}
