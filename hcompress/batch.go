package hcompress

import (
	"context"
	"runtime"
	"sync"
)

// ParallelConfig configures batch processing.
type ParallelConfig struct {
	// NumWorkers is the number of worker goroutines. 0 means runtime.GOMAXPROCS(0).
	NumWorkers int
}

// DefaultParallelConfig returns the default parallel configuration.
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{NumWorkers: 0}
}

// effectiveWorkers returns the number of workers to use for n items.
func effectiveWorkers(config ParallelConfig, n int) int {
	workers := config.NumWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return max(1, min(workers, n))
}

// workerPool runs submitted tasks on a fixed set of goroutines.
type workerPool struct {
	wg       sync.WaitGroup
	taskChan chan func()
	once     sync.Once
}

func newWorkerPool(numWorkers int) *workerPool {
	p := &workerPool{taskChan: make(chan func(), numWorkers*4)}
	for i := 0; i < numWorkers; i++ {
		go p.worker()
	}
	return p
}

func (p *workerPool) worker() {
	for task := range p.taskChan {
		task()
		p.wg.Done()
	}
}

func (p *workerPool) submit(task func()) {
	p.wg.Add(1)
	p.taskChan <- task
}

func (p *workerPool) wait() {
	p.wg.Wait()
}

func (p *workerPool) close() {
	p.once.Do(func() {
		close(p.taskChan)
	})
}

// forEach runs fn(i) for i in [0, n) on a worker pool. Cancellation is
// checked before each item starts, never in the middle of one. The
// first error stops new items from starting and is returned.
func forEach(ctx context.Context, n int, config ParallelConfig, fn func(i int) error) error {
	if n == 0 {
		return ctx.Err()
	}

	var (
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}
	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}

	pool := newWorkerPool(effectiveWorkers(config, n))
	defer pool.close()

	for i := 0; i < n; i++ {
		pool.submit(func() {
			if failed() {
				return
			}
			if err := ctx.Err(); err != nil {
				fail(err)
				return
			}
			if err := fn(i); err != nil {
				fail(err)
			}
		})
	}
	pool.wait()
	return firstErr
}

// CompressBatch compresses independent grids concurrently with the same
// scale. The result holds one stream per grid, in order. On error no
// streams are returned.
func CompressBatch(ctx context.Context, grids []*Grid, scale int, config ParallelConfig) ([][]byte, error) {
	out := make([][]byte, len(grids))
	err := forEach(ctx, len(grids), config, func(i int) error {
		stream, err := Compress(grids[i], scale)
		if err != nil {
			return err
		}
		out[i] = stream
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DecompressBatch decodes independent streams concurrently. On error no
// grids are returned.
func DecompressBatch(ctx context.Context, streams [][]byte, config ParallelConfig) ([]*Grid, error) {
	out := make([]*Grid, len(streams))
	err := forEach(ctx, len(streams), config, func(i int) error {
		g, err := Decompress(streams[i])
		if err != nil {
			return err
		}
		out[i] = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
