package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/ortelius/griffon/model"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// partition is one independently fetchable slice of a larger result set. It is either an offset window
// over a known total, or a named filter combination (one product version, one product stream).
type partition struct {
	Name    string
	Filters model.Filters
	Limit   int
	Offset  int
}

type fetchFunc[T any] func(ctx context.Context, p partition) ([]T, error)

// poolSize bounds the worker count by the configured limit and a small multiple of the partition count
func poolSize(workers, partitions int) int {
	n := min(workers, 2*partitions)
	return max(n, 1)
}

// fanOut fetches every partition on a bounded pool and merges the results in arrival order.
// A failing partition is logged once and contributes nothing; the remaining partitions still count.
// The returned error combines the partition failures and is informational: results are complete
// for every partition that succeeded.
func fanOut[T any](ctx context.Context, logger *zap.Logger, workers int, parts []partition, fetch fetchFunc[T]) ([]T, error) {
	if len(parts) == 0 {
		return nil, nil
	}

	var (
		g      errgroup.Group
		mu     sync.Mutex
		failed error
	)
	g.SetLimit(poolSize(workers, len(parts)))
	done := make(chan []T, len(parts))

	for _, p := range parts {
		g.Go(func() error {
			items, err := fetch(ctx, p)
			if err != nil {
				logger.Warn("partition failed",
					zap.String("partition", p.Name),
					zap.String("filters", p.Filters.String()),
					zap.Error(err))
				mu.Lock()
				failed = multierr.Append(failed, fmt.Errorf("%s: %w", p.Name, err))
				mu.Unlock()
				return nil
			}
			done <- items
			return nil
		})
	}
	_ = g.Wait()
	close(done)

	var results []T
	for items := range done {
		results = append(results, items...)
	}
	return results, failed
}

// offsetPartitions splits a known total into limit/offset windows over the same filters
func offsetPartitions(name string, filters model.Filters, total int) []partition {
	var parts []partition
	for offset := 0; offset < total; offset += windowSize {
		parts = append(parts, partition{
			Name:    fmt.Sprintf("%s[%d:%d]", name, offset, min(offset+windowSize, total)),
			Filters: filters.Clone(),
			Limit:   min(windowSize, total-offset),
			Offset:  offset,
		})
	}
	return parts
}

// componentWindows fetches an offset window of components from a registry
func componentWindows(reg ComponentRegistry) fetchFunc[model.Component] {
	return func(ctx context.Context, p partition) ([]model.Component, error) {
		return reg.ComponentsPage(ctx, p.Filters, p.Limit, p.Offset)
	}
}

// countAndFetch counts the matches for filters, caps the total and fans the windows out.
// Count and fetch use the same filters. Only a failed count is returned as an error.
func countAndFetch(ctx context.Context, d Deps, reg ComponentRegistry, name string, filters model.Filters) ([]model.Component, error) {
	count, err := reg.CountComponents(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", name, err)
	}
	total := min(count, resultCap(count))
	d.Logger.Debug("fetching components", zap.String("partition", name), zap.Int("count", count), zap.Int("fetching", total))

	found, _ := fanOut(ctx, d.Logger, d.Workers, offsetPartitions(name, filters, total), componentWindows(reg))
	return found, nil
}
