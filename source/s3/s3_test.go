package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	data []byte
	err  error
}

func (f *fakeClient) GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}

	start, end := int64(0), int64(len(f.data))-1
	if params.Range != nil {
		// Transfer manager issues ranged requests ("bytes=start-end").
		if _, err := fmt.Sscanf(*params.Range, "bytes=%d-%d", &start, &end); err != nil {
			return nil, err
		}
	}
	if end >= int64(len(f.data)) {
		end = int64(len(f.data)) - 1
	}

	chunk := f.data[start : end+1]
	return &awss3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(chunk)),
		ContentLength: aws.Int64(int64(len(chunk))),
		ContentRange:  aws.String(fmt.Sprintf("bytes %d-%d/%d", start, end, len(f.data))),
	}, nil
}

func TestSourceRows(t *testing.T) {
	data := []byte(`{"code":"AGE_18_24","description":"Aged 18 to 24","category":"demographic"}` + "\n" +
		`{"code":"URB_CORE","description":"Urban core residents","category":"geographic"}` + "\n")

	src := NewSource(&fakeClient{data: data}, "catalogs", "2026/variables.jsonl")
	assert.Equal(t, "s3://catalogs/2026/variables.jsonl", src.Name())

	rows, err := src.Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "AGE_18_24", rows[0].Code)
	assert.Equal(t, "geographic", rows[1].Category)
}

func TestSourceRowsDownloadError(t *testing.T) {
	src := NewSource(&fakeClient{err: fmt.Errorf("boom")}, "catalogs", "missing.jsonl")
	_, err := src.Rows(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "download")
}
