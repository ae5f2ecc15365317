package enrich

import "sync"

// Pool is an explicit, fixed-size worker pool scoped to one batch call.
// There is no ambient global pool; callers construct one and pass it in.
type Pool struct {
	// Size is the number of concurrent workers. Values below one run the
	// batch sequentially.
	Size int
}

// Each runs fn for every index in [0, n) across the pool's workers. Each
// invocation owns its index exclusively, so workers writing only to their
// own result slot need no locking. Each returns when all indexes have been
// processed; mid-batch cancellation is not supported.
func (p Pool) Each(n int, fn func(i int)) {
	if n <= 0 {
		return
	}

	workers := p.Size
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indexes {
				fn(i)
			}
		}()
	}

	for i := 0; i < n; i++ {
		indexes <- i
	}
	close(indexes)
	wg.Wait()
}
