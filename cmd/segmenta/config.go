package main

import (
	"context"
	"fmt"
	"os"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/segmenta"
	"github.com/hupe1980/segmenta/catalog"
	"github.com/hupe1980/segmenta/cluster"
	"github.com/hupe1980/segmenta/rank"
	"github.com/hupe1980/segmenta/resource"
	"github.com/hupe1980/segmenta/source"
	dynamodbsource "github.com/hupe1980/segmenta/source/dynamodb"
	miniosource "github.com/hupe1980/segmenta/source/minio"
	s3source "github.com/hupe1980/segmenta/source/s3"
)

// Config is the YAML configuration of the CLI.
type Config struct {
	Catalog struct {
		MinCount int            `yaml:"min_count"`
		Sources  []SourceConfig `yaml:"sources"`
	} `yaml:"catalog"`

	Search struct {
		KeywordWeight  float32 `yaml:"keyword_weight"`
		LexicalWeight  float32 `yaml:"lexical_weight"`
		SemanticWeight float32 `yaml:"semantic_weight"`
		BoostFactor    float32 `yaml:"boost_factor"`
	} `yaml:"search"`

	Partition struct {
		MinFrac       float64 `yaml:"min_frac"`
		MaxFrac       float64 `yaml:"max_frac"`
		MaxIterations int     `yaml:"max_iterations"`
		Workers       int     `yaml:"workers"`
	} `yaml:"partition"`

	Resources struct {
		MemoryLimitBytes  int64 `yaml:"memory_limit_bytes"`
		MaxConcurrentRuns int64 `yaml:"max_concurrent_runs"`
		IngestBytesPerSec int64 `yaml:"ingest_bytes_per_sec"`
	} `yaml:"resources"`
}

// SourceConfig declares one catalog source.
type SourceConfig struct {
	Type string `yaml:"type"` // local, s3, minio, dynamodb

	// local
	Path string `yaml:"path,omitempty"`

	// s3 / minio
	Bucket string `yaml:"bucket,omitempty"`
	Key    string `yaml:"key,omitempty"`

	// minio
	Endpoint  string `yaml:"endpoint,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
	UseSSL    bool   `yaml:"use_ssl,omitempty"`

	// dynamodb
	Table string `yaml:"table,omitempty"`
}

// LoadConfig reads and parses the YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if len(cfg.Catalog.Sources) == 0 {
		return nil, fmt.Errorf("config declares no catalog sources")
	}

	return &cfg, nil
}

// Controller builds the shared resource controller from the resources
// section. It gates partition runs and throttles catalog ingest.
func (c *Config) Controller() *resource.Controller {
	return resource.NewController(resource.Config{
		MemoryLimitBytes:  c.Resources.MemoryLimitBytes,
		MaxConcurrentRuns: c.Resources.MaxConcurrentRuns,
		IngestBytesPerSec: c.Resources.IngestBytesPerSec,
	})
}

// Sources instantiates the declared catalog sources, all throttled through
// the shared controller.
func (c *Config) Sources(ctx context.Context, ctrl *resource.Controller) ([]source.Source, error) {
	out := make([]source.Source, 0, len(c.Catalog.Sources))

	for i, sc := range c.Catalog.Sources {
		switch sc.Type {
		case "local":
			if sc.Path == "" {
				return nil, fmt.Errorf("source %d: local source needs a path", i)
			}
			out = append(out, source.NewLocalSource(sc.Path, source.WithThrottle(ctrl)))

		case "s3":
			if sc.Bucket == "" || sc.Key == "" {
				return nil, fmt.Errorf("source %d: s3 source needs bucket and key", i)
			}
			src, err := s3source.NewFromDefaultConfig(ctx, sc.Bucket, sc.Key, s3source.WithThrottle(ctrl))
			if err != nil {
				return nil, fmt.Errorf("source %d: %w", i, err)
			}
			out = append(out, src)

		case "minio":
			if sc.Endpoint == "" || sc.Bucket == "" || sc.Key == "" {
				return nil, fmt.Errorf("source %d: minio source needs endpoint, bucket and key", i)
			}
			client, err := minio.New(sc.Endpoint, &minio.Options{
				Creds:  credentials.NewStaticV4(sc.AccessKey, sc.SecretKey, ""),
				Secure: sc.UseSSL,
			})
			if err != nil {
				return nil, fmt.Errorf("source %d: %w", i, err)
			}
			out = append(out, miniosource.NewSource(client, sc.Bucket, sc.Key, miniosource.WithThrottle(ctrl)))

		case "dynamodb":
			if sc.Table == "" {
				return nil, fmt.Errorf("source %d: dynamodb source needs a table", i)
			}
			src, err := dynamodbsource.NewFromDefaultConfig(ctx, sc.Table)
			if err != nil {
				return nil, fmt.Errorf("source %d: %w", i, err)
			}
			out = append(out, src)

		default:
			return nil, fmt.Errorf("source %d: unknown type %q", i, sc.Type)
		}
	}

	return out, nil
}

// EngineOptions maps the config onto engine options. The controller must be
// the same one the sources were built with.
func (c *Config) EngineOptions(logger *segmenta.Logger, ctrl *resource.Controller) []segmenta.Option {
	opts := []segmenta.Option{
		segmenta.WithLogger(logger),
		segmenta.WithResourceController(ctrl),
	}

	if c.Catalog.MinCount > 0 {
		opts = append(opts, segmenta.WithCatalogOptions(catalog.WithMinCount(c.Catalog.MinCount)))
	}

	var scorerOpts []rank.Option
	if c.Search.KeywordWeight > 0 || c.Search.LexicalWeight > 0 || c.Search.SemanticWeight > 0 {
		scorerOpts = append(scorerOpts, rank.WithWeights(rank.Weights{
			Keyword:  c.Search.KeywordWeight,
			Lexical:  c.Search.LexicalWeight,
			Semantic: c.Search.SemanticWeight,
		}))
	}
	if c.Search.BoostFactor > 0 {
		scorerOpts = append(scorerOpts, rank.WithBoostFactor(c.Search.BoostFactor))
	}
	if len(scorerOpts) > 0 {
		opts = append(opts, segmenta.WithScorerOptions(scorerOpts...))
	}

	if c.Partition.MaxIterations > 0 || c.Partition.Workers > 0 {
		opts = append(opts, segmenta.WithClusterOptions(func(o *cluster.Options) {
			if c.Partition.MaxIterations > 0 {
				o.MaxIterations = c.Partition.MaxIterations
			}
			if c.Partition.Workers > 0 {
				o.Workers = c.Partition.Workers
			}
		}))
	}

	return opts
}
