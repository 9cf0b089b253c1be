// Package minio provides a catalog source reading JSON-lines descriptor rows
// from a MinIO (or other S3-compatible) object store.
package minio

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"

	"github.com/hupe1980/segmenta/codec"
	"github.com/hupe1980/segmenta/resource"
	"github.com/hupe1980/segmenta/source"
)

// Source reads descriptor rows from a single MinIO object.
type Source struct {
	client   *minio.Client
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

// WithThrottle routes object reads through the controller's ingest rate
// limit.
func WithThrottle(rc *resource.Controller) Option {
	return func(s *Source) {
		s.throttle = rc
	}
}

// NewSource creates a Source for the given bucket and object key.
func NewSource(client *minio.Client, bucket, key string, optFns ...Option) *Source {
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

// Name implements source.Source.
func (s *Source) Name() string {
	return fmt.Sprintf("minio://%s/%s", s.bucket, s.key)
}

// Rows implements source.Source.
func (s *Source) Rows(ctx context.Context) ([]source.Row, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.Name(), err)
	}
	defer func() { _ = obj.Close() }()

	var r io.Reader = obj
	if s.throttle != nil {
		r = resource.NewThrottledReader(ctx, r, s.throttle)
	}

	rows, err := source.DecodeRows(s.codec, r, s.key)
	if err != nil {
		// GetObject defers most failures to the first read; surface them
		// with the object name attached.
		errResp := minio.ToErrorResponse(err)
		if errResp.Code != "" {
			return nil, fmt.Errorf("get %s: %w", s.Name(), err)
		}
		return nil, err
	}
	return rows, nil
}
