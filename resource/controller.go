package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits for an engine instance.
type Config struct {
	// MemoryLimitBytes is the hard limit for encoded matrix buffers.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxConcurrentRuns is the maximum number of partition runs in flight.
	// If 0, defaults to 1.
	MaxConcurrentRuns int64

	// IngestBytesPerSec is the maximum catalog ingest throughput.
	// If 0, unlimited.
	IngestBytesPerSec int64
}

// Controller manages shared resources across searches, partition runs and
// catalog rebuilds.
type Controller struct {
	cfg Config

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	// Partition concurrency
	runSem *semaphore.Weighted

	// Ingest IO
	ingestLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentRuns <= 0 {
		cfg.MaxConcurrentRuns = 1
	}

	c := &Controller{
		cfg:    cfg,
		runSem: semaphore.NewWeighted(cfg.MaxConcurrentRuns),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.IngestBytesPerSec > 0 {
		c.ingestLimiter = rate.NewLimiter(rate.Limit(cfg.IngestBytesPerSec), int(cfg.IngestBytesPerSec))
	}

	return c
}

// AcquireMemory attempts to reserve memory for an encoded matrix.
// If a hard limit is configured and usage would exceed it, this blocks until
// memory is available or ctx is canceled.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// TryAcquireMemory attempts to reserve memory without blocking.
// Returns true if acquired, false if the limit would be exceeded.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return false
		}
	}

	c.memUsed.Add(bytes)
	return true
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	return c.memUsed.Load()
}

// AcquireRun reserves a partition run slot. Blocks if all slots are busy.
func (c *Controller) AcquireRun(ctx context.Context) error {
	return c.runSem.Acquire(ctx, 1)
}

// TryAcquireRun reserves a partition run slot without blocking.
func (c *Controller) TryAcquireRun() bool {
	return c.runSem.TryAcquire(1)
}

// ReleaseRun releases a partition run slot.
func (c *Controller) ReleaseRun() {
	c.runSem.Release(1)
}

// AcquireIngest waits until the ingest limit allows the specified number of
// bytes. Requests beyond the limiter burst drain in burst-sized chunks, so a
// large read buffer waits instead of failing outright.
func (c *Controller) AcquireIngest(ctx context.Context, bytes int) error {
	if c == nil || c.ingestLimiter == nil {
		return nil
	}
	burst := c.ingestLimiter.Burst()
	for bytes > 0 {
		n := bytes
		if n > burst {
			n = burst
		}
		if err := c.ingestLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}
