package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hupe1980/segmenta/codec"
	"github.com/hupe1980/segmenta/resource"
)

// LocalSource reads descriptor rows from a JSON-lines file on the local file
// system. Compressed files are handled transparently by extension.
type LocalSource struct {
	path     string
	codec    codec.Codec
	throttle *resource.Controller
}

// LocalOption configures a LocalSource.
type LocalOption func(*LocalSource)

// WithCodec sets the codec used to decode rows. Defaults to codec.Default.
func WithCodec(c codec.Codec) LocalOption {
	return func(s *LocalSource) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithThrottle routes reads through the controller's ingest rate limit.
func WithThrottle(rc *resource.Controller) LocalOption {
	return func(s *LocalSource) {
		s.throttle = rc
	}
}

// NewLocalSource creates a LocalSource for the given file path.
func NewLocalSource(path string, optFns ...LocalOption) *LocalSource {
	s := &LocalSource{path: path, codec: codec.Default}
	for _, fn := range optFns {
		if fn != nil {
			fn(s)
		}
	}
	return s
}

// Name implements Source.
func (s *LocalSource) Name() string { return filepath.Base(s.path) }

// Rows implements Source.
func (s *LocalSource) Rows(ctx context.Context) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open catalog source: %w", err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if s.throttle != nil {
		r = resource.NewThrottledReader(ctx, f, s.throttle)
	}

	return DecodeRows(s.codec, r, s.path)
}
