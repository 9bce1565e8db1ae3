package solver

import "sync"

// parallelRows executes fn for each row j in [start,end), splitting the range
// into contiguous chunks across at most workers goroutines. Callers must
// guarantee that fn touches disjoint data per row.
func parallelRows(start, end, workers int, fn func(j int)) {
	total := end - start
	if total <= 0 {
		return
	}
	if workers > total {
		workers = total
	}
	var wg sync.WaitGroup
	chunk := (total + workers - 1) / workers
	for w := 0; w < workers; w++ {
		s := start + w*chunk
		e := s + chunk
		if e > end {
			e = end
		}
		if s >= end {
			break
		}
		wg.Add(1)
		go func(ss, ee int) {
			defer wg.Done()
			for j := ss; j < ee; j++ {
				fn(j)
			}
		}(s, e)
	}
	wg.Wait()
}
