// Package fileproc fans file and pair work out over bounded worker pools.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/panbanda/simfeat/pkg/parser"
)

// FileError is the reason one file produced no result.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string { return e.Path + ": " + e.Err.Error() }
func (e FileError) Unwrap() error { return e.Err }

// Failures accumulates FileErrors from concurrent workers. A nil *Failures
// is empty.
type Failures struct {
	mu   sync.Mutex
	list []FileError
}

func (f *Failures) add(path string, err error) {
	f.mu.Lock()
	f.list = append(f.list, FileError{Path: path, Err: err})
	f.mu.Unlock()
}

func (f *Failures) Len() int {
	if f == nil {
		return 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.list)
}

// List returns a copy of the failures ordered by path.
func (f *Failures) List() []FileError {
	if f == nil {
		return nil
	}
	f.mu.Lock()
	out := append([]FileError(nil), f.list...)
	f.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Err summarizes the failures, or returns nil when there are none.
func (f *Failures) Err() error {
	list := f.List()
	switch len(list) {
	case 0:
		return nil
	case 1:
		return list[0]
	default:
		return fmt.Errorf("%d files failed (first %w)", len(list), list[0])
	}
}

// DefaultWorkerMultiplier scales NumCPU when no worker count is configured.
// Parsing mixes file reads with cgo calls, so twice the cores keeps them busy.
const DefaultWorkerMultiplier = 2

// Workers returns n, or the default pool size when n <= 0.
func Workers(n int) int {
	if n <= 0 {
		return runtime.NumCPU() * DefaultWorkerMultiplier
	}
	return n
}

// ProgressFunc ticks once per finished unit of work, failed or not.
type ProgressFunc func()

// ErrorFunc observes a file failure as it happens.
type ErrorFunc func(path string, err error)

// FileFunc handles one file. psr belongs to the calling goroutine.
type FileFunc[T any] func(ctx context.Context, psr *parser.Parser, path string) (T, error)

// MapFilesN runs fn over files on at most maxWorkers goroutines. Results
// keep the order of files, minus the ones that failed. A failing file
// never stops the others. Files not yet started when ctx is cancelled fail
// with the context error. The returned *Failures is nil when every file
// succeeded.
func MapFilesN[T any](ctx context.Context, files []string, maxWorkers int, fn FileFunc[T], onProgress ProgressFunc, onError ErrorFunc) ([]T, *Failures) {
	if len(files) == 0 {
		return nil, nil
	}

	slots := make([]T, len(files))
	done := make([]bool, len(files))
	failures := &Failures{}

	tick := func() {
		if onProgress != nil {
			onProgress()
		}
	}
	fail := func(path string, err error) {
		failures.add(path, err)
		if onError != nil {
			onError(path, err)
		}
		tick()
	}

	p := pool.New().WithMaxGoroutines(Workers(maxWorkers)).WithContext(ctx)
	for i, path := range files {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				fail(path, err)
				return err
			}

			psr := parser.New()
			defer psr.Close()

			v, err := fn(ctx, psr, path)
			if err != nil {
				fail(path, err)
				return nil
			}
			slots[i], done[i] = v, true
			tick()
			return nil
		})
	}
	// Every failure, cancellation included, is already in failures.
	_ = p.Wait()

	results := make([]T, 0, len(files))
	for i, ok := range done {
		if ok {
			results = append(results, slots[i])
		}
	}
	if failures.Len() == 0 {
		return results, nil
	}
	return results, failures
}
