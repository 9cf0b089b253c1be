package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/segmenta/resource"
)

const sampleJSONL = `{"code":"AGE_18_24","description":"Share of population aged 18 to 24","category":"demographic","keywords":["age","young"]}

{"code":"INC_HIGH","description":"High income households","category":"financial","keywords":["income","wealth"]}
`

func TestLocalSourcePlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSONL), 0o600))

	src := NewLocalSource(path)
	assert.Equal(t, "catalog.jsonl", src.Name())

	rows, err := src.Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "AGE_18_24", rows[0].Code)
	assert.Equal(t, "financial", rows[1].Category)
	assert.Equal(t, []string{"age", "young"}, rows[0].Keywords)
}

func TestLocalSourceGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.jsonl.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gw := gzip.NewWriter(f)
	_, err = gw.Write([]byte(sampleJSONL))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	require.NoError(t, f.Close())

	rows, err := NewLocalSource(path).Rows(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestLocalSourceZstd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.jsonl.zst")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw, err := zstd.NewWriter(f)
	require.NoError(t, err)
	_, err = zw.Write([]byte(sampleJSONL))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	rows, err := NewLocalSource(path).Rows(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestLocalSourceLZ4(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.jsonl.lz4")
	f, err := os.Create(path)
	require.NoError(t, err)
	lw := lz4.NewWriter(f)
	_, err = lw.Write([]byte(sampleJSONL))
	require.NoError(t, err)
	require.NoError(t, lw.Close())
	require.NoError(t, f.Close())

	rows, err := NewLocalSource(path).Rows(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestLocalSourceThrottled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSONL), 0o600))

	// A generous limit lets the read complete normally.
	fast := resource.NewController(resource.Config{IngestBytesPerSec: 1 << 20})
	rows, err := NewLocalSource(path, WithThrottle(fast)).Rows(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	// A byte-per-second limit cannot fill the scanner buffer before the
	// deadline; the read must fail through the limiter, not hang.
	slow := resource.NewController(resource.Config{IngestBytesPerSec: 1})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = NewLocalSource(path, WithThrottle(slow)).Rows(ctx)
	require.Error(t, err)
}

func TestLocalSourceMalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"code\":\"A\"}\nnot json\n"), 0o600))

	_, err := NewLocalSource(path).Rows(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLocalSourceMissingFile(t *testing.T) {
	_, err := NewLocalSource(filepath.Join(t.TempDir(), "nope.jsonl")).Rows(context.Background())
	assert.Error(t, err)
}

func TestMemorySourceCopies(t *testing.T) {
	rows := []Row{{Code: "A"}}
	src := NewMemorySource("mem", rows)

	got, err := src.Rows(context.Background())
	require.NoError(t, err)
	got[0].Code = "B"

	again, err := src.Rows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "A", again[0].Code)
}

func TestMemorySourceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemorySource("mem", nil).Rows(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
