package linalg

import "fmt"

// Cloner is implemented by values that can produce an independent deep copy.
type Cloner[T any] interface {
	Clone() T
}

// List is a fixed-count ordered collection that exclusively owns its
// elements. Copying a List deep-copies every element, and Set stores a copy
// of its argument, so no two lists ever share an element.
type List[T Cloner[T]] struct {
	items []T
}

// NewList builds a list of n elements produced by newItem.
func NewList[T Cloner[T]](n int, newItem func(i int) T) *List[T] {
	if n < 0 {
		n = 0
	}
	items := make([]T, n)
	for i := range items {
		items[i] = newItem(i)
	}
	return &List[T]{items: items}
}

func (l *List[T]) Len() int { return len(l.items) }

// At returns the element owned by the list at i. Mutations through the
// returned value are visible to the list.
func (l *List[T]) At(i int) (T, error) {
	if i < 0 || i >= len(l.items) {
		var zero T
		return zero, fmt.Errorf("list index %d of %d: %w", i, len(l.items), ErrIndexOutOfRange)
	}
	return l.items[i], nil
}

// CloneAt returns an independent copy of the element at i.
func (l *List[T]) CloneAt(i int) (T, error) {
	item, err := l.At(i)
	if err != nil {
		return item, err
	}
	return item.Clone(), nil
}

// Set replaces the element at i with a copy of item.
func (l *List[T]) Set(i int, item T) error {
	if i < 0 || i >= len(l.items) {
		return fmt.Errorf("list index %d of %d: %w", i, len(l.items), ErrIndexOutOfRange)
	}
	l.items[i] = item.Clone()
	return nil
}

func (l *List[T]) Clone() *List[T] {
	items := make([]T, len(l.items))
	for i, item := range l.items {
		items[i] = item.Clone()
	}
	return &List[T]{items: items}
}

// Assign drops every element l owns and replaces them with exactly
// src.Len() deep copies of src's elements.
func (l *List[T]) Assign(src *List[T]) {
	if l == src {
		return
	}
	l.items = src.Clone().items
}

// Each calls fn with every element in order until fn returns false.
func (l *List[T]) Each(fn func(i int, item T) bool) {
	for i, item := range l.items {
		if !fn(i, item) {
			return
		}
	}
}
