package utils

import (
	"context"
	"sync"
)

// Task is one item processed by ParallelForEach together with its outcome
type Task[T any] struct {
	Index int
	Data  T
	Err   error
}

// ParallelForEach runs fn for every item using at most workers goroutines.
// The returned tasks keep the order of items. Items not started before ctx
// is cancelled carry the context error.
func ParallelForEach[T any](ctx context.Context, items []T, workers int, fn func(context.Context, T) error) []Task[T] {
	tasks := make([]Task[T], len(items))
	for i, item := range items {
		tasks[i] = Task[T]{Index: i, Data: item}
	}
	if len(items) == 0 {
		return tasks
	}

	if workers <= 0 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}

	queue := make(chan int)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range queue {
				tasks[idx].Err = fn(ctx, tasks[idx].Data)
			}
		}()
	}

	next := 0
submit:
	for ; next < len(items); next++ {
		select {
		case <-ctx.Done():
			break submit
		case queue <- next:
		}
	}
	close(queue)
	wg.Wait()

	for ; next < len(items); next++ {
		tasks[next].Err = ctx.Err()
	}
	return tasks
}

// CollectErrors collects all non-nil errors from a slice
func CollectErrors(errors []error) []error {
	var result []error
	for _, err := range errors {
		if err != nil {
			result = append(result, err)
		}
	}
	return result
}
