package clients

import (
	"context"
)

// PageFunc fetches the next page of a cursor walk. It returns more=false once the walk is
// exhausted; the returned page is still yielded. Cursor state lives in the closure, derived
// from the last item of the previous page.
type PageFunc[T any] func(ctx context.Context) (page []T, more bool, err error)

// Iterator is a lazy, finite, forward-only sequence of T assembled from one or more page
// walks run back to back. It is not restartable and not safe for concurrent use. Each call
// to Next may block on network I/O or a rate-limit wait.
type Iterator[T any] struct {
	pages    []PageFunc[T]
	buffer   []T
	current  T
	started  bool
	done     bool
	err      error
	progress func(T) float64
	reached  float64
}

func NewIterator[T any](pages ...PageFunc[T]) *Iterator[T] {
	return &Iterator[T]{pages: pages}
}

// SliceIterator yields items without any network access
func SliceIterator[T any](items []T) *Iterator[T] {
	return NewIterator(func(context.Context) ([]T, bool, error) {
		return items, false, nil
	})
}

// ErrorIterator yields nothing and reports err
func ErrorIterator[T any](err error) *Iterator[T] {
	return &Iterator[T]{err: err}
}

// WithProgress installs a function computing the completed fraction after an item is yielded
func (it *Iterator[T]) WithProgress(fn func(T) float64) *Iterator[T] {
	it.progress = fn
	return it
}

// Next advances to the next item, fetching pages as needed
func (it *Iterator[T]) Next(ctx context.Context) bool {
	for len(it.buffer) == 0 {
		if it.err != nil || it.done {
			return false
		}
		if len(it.pages) == 0 {
			it.done = true
			return false
		}
		if err := ctx.Err(); err != nil {
			it.err = err
			return false
		}

		page, more, err := it.pages[0](ctx)
		if err != nil {
			it.err = err
			return false
		}
		if !more {
			it.pages = it.pages[1:]
		}
		it.buffer = page
	}

	it.current, it.buffer = it.buffer[0], it.buffer[1:]
	it.started = true
	if it.progress != nil {
		// Saturate and never move backwards
		if p := min(max(it.progress(it.current), 0), 1); p > it.reached {
			it.reached = p
		}
	}
	return true
}

// Value returns the item Next advanced to
func (it *Iterator[T]) Value() T {
	return it.current
}

// Err returns the error that stopped the walk, if any
func (it *Iterator[T]) Err() error {
	return it.err
}

// Progress returns the completed fraction in [0, 1]. An exhausted walk is complete.
func (it *Iterator[T]) Progress() float64 {
	if it.done && it.err == nil {
		return 1
	}
	return it.reached
}

// Collect drains the iterator
func (it *Iterator[T]) Collect(ctx context.Context) ([]T, error) {
	var items []T
	for it.Next(ctx) {
		items = append(items, it.Value())
	}
	return items, it.Err()
}
