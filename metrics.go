package segmenta

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    searchHistogram    prometheus.Histogram
//	    partitionHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordSearch(topK int, duration time.Duration, err error) {
//	    p.searchHistogram.Observe(duration.Seconds())
//	    // ... record error state, etc.
//	}
type MetricsCollector interface {
	// RecordSearch is called after each search operation.
	// topK is the number of results requested, duration is the time taken,
	// err is nil if successful.
	RecordSearch(topK int, duration time.Duration, err error)

	// RecordRefine is called after each refinement operation.
	RecordRefine(topK int, duration time.Duration, err error)

	// RecordPartition is called after each partition run.
	// k is the number of segments requested, records is the population size.
	RecordPartition(k, records int, duration time.Duration, err error)

	// RecordCatalogBuild is called after each catalog build.
	// variables is the catalog size, err is nil if successful.
	RecordCatalogBuild(variables int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSearch(int, time.Duration, error)         {}
func (NoopMetricsCollector) RecordRefine(int, time.Duration, error)         {}
func (NoopMetricsCollector) RecordPartition(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordCatalogBuild(int, time.Duration, error)   {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SearchCount         atomic.Int64
	SearchErrors        atomic.Int64
	SearchTotalNanos    atomic.Int64
	RefineCount         atomic.Int64
	RefineErrors        atomic.Int64
	PartitionCount      atomic.Int64
	PartitionErrors     atomic.Int64
	PartitionRecords    atomic.Int64
	PartitionTotalNanos atomic.Int64
	CatalogBuilds       atomic.Int64
	CatalogBuildErrors  atomic.Int64
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(topK int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// RecordRefine implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRefine(topK int, duration time.Duration, err error) {
	b.RefineCount.Add(1)
	if err != nil {
		b.RefineErrors.Add(1)
	}
}

// RecordPartition implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPartition(k, records int, duration time.Duration, err error) {
	b.PartitionCount.Add(1)
	b.PartitionRecords.Add(int64(records))
	b.PartitionTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.PartitionErrors.Add(1)
	}
}

// RecordCatalogBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCatalogBuild(variables int, duration time.Duration, err error) {
	b.CatalogBuilds.Add(1)
	if err != nil {
		b.CatalogBuildErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SearchCount:        b.SearchCount.Load(),
		SearchErrors:       b.SearchErrors.Load(),
		SearchAvgNanos:     b.getAvgSearchNanos(),
		RefineCount:        b.RefineCount.Load(),
		RefineErrors:       b.RefineErrors.Load(),
		PartitionCount:     b.PartitionCount.Load(),
		PartitionErrors:    b.PartitionErrors.Load(),
		PartitionRecords:   b.PartitionRecords.Load(),
		PartitionAvgNanos:  b.getAvgPartitionNanos(),
		CatalogBuilds:      b.CatalogBuilds.Load(),
		CatalogBuildErrors: b.CatalogBuildErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgSearchNanos() int64 {
	count := b.SearchCount.Load()
	if count == 0 {
		return 0
	}
	return b.SearchTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgPartitionNanos() int64 {
	count := b.PartitionCount.Load()
	if count == 0 {
		return 0
	}
	return b.PartitionTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SearchCount        int64
	SearchErrors       int64
	SearchAvgNanos     int64
	RefineCount        int64
	RefineErrors       int64
	PartitionCount     int64
	PartitionErrors    int64
	PartitionRecords   int64
	PartitionAvgNanos  int64
	CatalogBuilds      int64
	CatalogBuildErrors int64
}
