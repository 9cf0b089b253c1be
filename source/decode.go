package source

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/segmenta/codec"
)

// maxLineBytes bounds a single JSON line. Descriptor rows are small; a line
// beyond this is a malformed or hostile input.
const maxLineBytes = 1 << 20

// DecodeRows reads JSON-lines rows from r. The name is used to select a
// decompression layer by extension (.gz, .zst, .lz4) and to annotate errors.
// Blank lines are skipped; a malformed line fails the whole read, it is never
// silently dropped.
func DecodeRows(c codec.Codec, r io.Reader, name string) ([]Row, error) {
	if c == nil {
		c = codec.Default
	}

	dr, closeFn, err := decompress(r, name)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", name, err)
	}
	if closeFn != nil {
		defer closeFn()
	}

	var rows []Row
	scanner := bufio.NewScanner(dr)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var row Row
		if err := c.Unmarshal(line, &row); err != nil {
			return nil, fmt.Errorf("source %s: line %d: %w", name, lineNo, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("source %s: %w", name, err)
	}

	return rows, nil
}

// decompress wraps r according to the extension of name.
func decompress(r io.Reader, name string) (io.Reader, func(), error) {
	switch {
	case strings.HasSuffix(name, ".gz"):
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return gr, func() { _ = gr.Close() }, nil
	case strings.HasSuffix(name, ".zst"):
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	case strings.HasSuffix(name, ".lz4"):
		return lz4.NewReader(r), nil, nil
	default:
		return r, nil, nil
	}
}
