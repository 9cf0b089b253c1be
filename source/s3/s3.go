// Package s3 provides a catalog source reading JSON-lines descriptor rows
// from an S3 object.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/hupe1980/segmenta/codec"
	"github.com/hupe1980/segmenta/resource"
	"github.com/hupe1980/segmenta/source"
)

// Client is the subset of the S3 API the source uses.
// *s3.Client satisfies it; tests may substitute a fake.
type Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Source reads descriptor rows from a single S3 object.
type Source struct {
	client   Client
	bucket   string
	key      string
	codec    codec.Codec
	throttle *resource.Controller
}

// Option configures a Source.
type Option func(*Source)

// WithCodec sets the codec used to decode rows. Defaults to codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(s *Source) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithThrottle routes decoding of the downloaded object through the
// controller's ingest rate limit.
func WithThrottle(rc *resource.Controller) Option {
	return func(s *Source) {
		s.throttle = rc
	}
}

// NewSource creates a Source for the given bucket and object key.
func NewSource(client Client, bucket, key string, optFns ...Option) *Source {
	s := &Source{
		client: client,
		bucket: bucket,
		key:    key,
		codec:  codec.Default,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(s)
		}
	}
	return s
}

// NewFromDefaultConfig creates a Source using the default AWS credential and
// region chain.
func NewFromDefaultConfig(ctx context.Context, bucket, key string, optFns ...Option) (*Source, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewSource(s3.NewFromConfig(cfg), bucket, key, optFns...), nil
}

// Name implements source.Source.
func (s *Source) Name() string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.key)
}

// Rows implements source.Source. The object is downloaded in full via the
// transfer manager, then decoded like a local JSON-lines file.
func (s *Source) Rows(ctx context.Context) ([]source.Row, error) {
	buf := manager.NewWriteAtBuffer(nil)
	downloader := manager.NewDownloader(s.client)

	if _, err := downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	}); err != nil {
		return nil, fmt.Errorf("download %s: %w", s.Name(), err)
	}

	var r io.Reader = bytes.NewReader(buf.Bytes())
	if s.throttle != nil {
		r = resource.NewThrottledReader(ctx, r, s.throttle)
	}

	return source.DecodeRows(s.codec, r, s.key)
}
