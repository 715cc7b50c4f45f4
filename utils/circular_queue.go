package utils

import (
	"iter"

	"github.com/oomph-ac/physcore/oerror"
)

// CircularQueue is a fixed capacity FIFO that overwrites its oldest element once full. It is used to keep
// a bounded history of per-frame simulation statistics.
type CircularQueue[T any] struct {
	items []T
	head  int
	size  int
}

// NewCircularQueue returns an empty queue able to hold capacity items.
func NewCircularQueue[T any](capacity int) *CircularQueue[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &CircularQueue[T]{items: make([]T, capacity)}
}

// Append adds an item to the back of the queue, dropping the oldest item if the queue is full. An error is
// returned if the queue has zero capacity.
func (q *CircularQueue[T]) Append(item T) error {
	if len(q.items) == 0 {
		return oerror.Text("circularQueue: append on zero-capacity queue")
	}
	q.items[(q.head+q.size)%len(q.items)] = item
	if q.size == len(q.items) {
		q.head = (q.head + 1) % len(q.items)
	} else {
		q.size++
	}
	return nil
}

// Get returns the element at logical position index (0 = oldest).
func (q *CircularQueue[T]) Get(index int) (T, bool) {
	var zero T
	if index < 0 || index >= q.size {
		return zero, false
	}
	return q.items[(q.head+index)%len(q.items)], true
}

// Last returns the most recently appended element.
func (q *CircularQueue[T]) Last() (T, bool) {
	return q.Get(q.size - 1)
}

// Len returns the amount of items currently held by the queue.
func (q *CircularQueue[T]) Len() int {
	return q.size
}

// Cap returns the maximum amount of items the queue can hold.
func (q *CircularQueue[T]) Cap() int {
	return len(q.items)
}

// Clear removes all items from the queue without releasing its storage.
func (q *CircularQueue[T]) Clear() {
	clear(q.items)
	q.head, q.size = 0, 0
}

// Iter iterates the queue from the oldest to the newest element.
func (q *CircularQueue[T]) Iter() iter.Seq[T] {
	return func(yield func(T) bool) {
		for index := range q.size {
			if !yield(q.items[(q.head+index)%len(q.items)]) {
				return
			}
		}
	}
}
