package epub

import (
	"errors"
	"sync"
)

// runUnits fans one unit of work out per item and joins on completion.
// concurrency <= 0 launches every unit at once (one goroutine per item);
// a positive value bounds in-flight units with a semaphore. The call does
// not return until every unit has finished; unit failures do not stop
// sibling units. All unit errors are surfaced joined, in item order.
func runUnits[T any](items []T, concurrency int, fn func(T) error) error {
	if len(items) == 0 {
		return nil
	}
	var sem chan struct{}
	if concurrency > 0 {
		if concurrency > len(items) {
			concurrency = len(items)
		}
		sem = make(chan struct{}, concurrency)
	}

	errs := make([]error, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item T) {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			errs[i] = fn(item)
		}(i, item)
	}
	wg.Wait()
	return errors.Join(errs...)
}
