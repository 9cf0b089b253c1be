// Package source defines catalog ingestion sources.
//
// A Source yields descriptor rows in the normalized shape
// {code, description, category, keywords[]}. The catalog builder merges an
// ordered list of sources into one immutable index; normalizing foreign file
// formats into rows is the source implementation's responsibility.
//
// Built-in implementations:
//
//   - MemorySource: rows held in memory, mainly for tests and embedding.
//   - LocalSource: JSON-lines files on the local file system, with
//     transparent gzip/zstd/lz4 decompression selected by file extension.
//   - s3.Source: JSON-lines objects in S3 (subpackage source/s3).
//   - minio.Source: JSON-lines objects on MinIO (subpackage source/minio).
//   - dynamodb.Source: descriptor items in a DynamoDB table
//     (subpackage source/dynamodb).
package source
