// Copyright 2017, Kerby Shedden and the Muscato contributors.

// Package batchpool runs a collection of independent work items with
// bounded concurrency, following muscato_screen's own
// limit := make(chan bool, concurrency) semaphore pattern, and
// provides an optional FIFO-staged variant grounded on
// muscato.go's pipefromsz/makeTemp: a unix.Mkfifo'd named pipe per
// work item, tagged with a uuid-derived temporary directory, for
// callers that want to hand a batch to an external consumer reading
// from a path rather than a Go channel.
package batchpool

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

// Run executes fn(items[i]) for every i with at most concurrency
// goroutines in flight at once, following muscato_screen.search's
// limit-channel pool. If concurrency is <= 0, runtime.NumCPU() is
// used. The returned slice has one entry per item, nil where fn
// succeeded.
func Run[T any](items []T, concurrency int, fn func(T) error) []error {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	limit := make(chan struct{}, concurrency)
	errs := make([]error, len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		limit <- struct{}{}
		go func(i int, item T) {
			defer wg.Done()
			defer func() { <-limit }()
			errs[i] = fn(item)
		}(i, item)
	}
	wg.Wait()

	return errs
}

// WorkItem is one batch of work staged through a named pipe, tagged
// with a unique temporary directory the way muscato.go's makeTemp
// tags each run's working directory with a fresh uuid.
type WorkItem struct {
	// Dir is a uuid-suffixed temporary directory created for this
	// item's exclusive use.
	Dir string
	// FIFOPath is a named pipe under Dir that the producer writes
	// into and the external consumer reads from.
	FIFOPath string
}

// Spawn allocates n WorkItems, each with its own temporary directory
// and named pipe, following pipefromsz's one-fifo-per-pipe convention.
// A failed Mkfifo is returned as an error; it is not retried.
// baseDir is the parent directory under which per-item directories
// are created; it is created if missing. On platforms without FIFO
// support, callers should not invoke Spawn; use Run with in-memory
// channels instead.
func Spawn(baseDir string, n int) ([]WorkItem, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}

	items := make([]WorkItem, 0, n)
	for i := 0; i < n; i++ {
		id, err := uuid.NewUUID()
		if err != nil {
			return nil, err
		}
		dir := filepath.Join(baseDir, id.String())
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}

		fifo := filepath.Join(dir, "pipe")
		if err := unix.Mkfifo(fifo, 0o644); err != nil {
			return nil, fmt.Errorf("batchpool: mkfifo %s: %w", fifo, err)
		}

		items = append(items, WorkItem{Dir: dir, FIFOPath: fifo})
	}
	return items, nil
}

// Cleanup removes every WorkItem's directory, mirroring muscato's own
// NoCleanTmp-gated teardown of its uuid-tagged temp directories.
func Cleanup(items []WorkItem) error {
	var firstErr error
	for _, it := range items {
		if err := os.RemoveAll(it.Dir); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
