package mutablestream

import (
	"fmt"
	"strings"
)

// A Collector describes a mutable reduction, see CollectWith.
//
// Supplier returns a new, empty container. Accumulator adds an element to a container and returns it.
// Combiner merges two containers, the second one holding later elements, and is only used by
// parallel streams. Finisher converts the final container into the result. If Finisher is nil,
// the container is the result, and A must be the same type as R.
type Collector[T any, A any, R any] struct {
	Supplier    func() A
	Accumulator func(A, T) A
	Combiner    func(A, A) A
	Finisher    func(A) (R, error)
}

// A DuplicateKeyError is returned by streams collected using ToMapNoDuplicateKeys
// to indicate that a key could not be added to a map because it already exists.
type DuplicateKeyError[T any, K comparable] struct {
	// Element is the element that caused the error.
	Element T

	// Key is the key that was already in the map.
	Key K
}

func (c Collector[T, A, R]) finish(acc A) (R, error) {
	if c.Finisher == nil {
		if res, ok := any(&acc).(*R); ok {
			return *res, nil
		}

		if res, ok := any(acc).(R); ok {
			return res, nil
		}

		var zero R
		return zero, fmt.Errorf("collector without finisher: container %T is not a %T: %w", acc, zero, ErrUnsupportedOperation)
	}

	return c.Finisher(acc)
}

// ToSliceCollector returns a collector that collects elements into a slice, in encounter order.
func ToSliceCollector[T any]() Collector[T, []T, []T] {
	return Collector[T, []T, []T]{
		Supplier: func() []T {
			return []T{}
		},
		Accumulator: func(acc []T, elem T) []T {
			return append(acc, elem)
		},
		Combiner: func(acc1 []T, acc2 []T) []T {
			return append(acc1, acc2...)
		},
	}
}

// ToMap returns a collector that collects elements into a map.
// Elements are mapped using key and value, respectively.
// If a key is already in the map, the map entry will be overwritten by the later element.
func ToMap[T any, K comparable, V any](key func(T) K, value func(T) V) Collector[T, map[K]V, map[K]V] {
	return Collector[T, map[K]V, map[K]V]{
		Supplier: func() map[K]V {
			return map[K]V{}
		},
		Accumulator: func(acc map[K]V, elem T) map[K]V {
			acc[key(elem)] = value(elem)
			return acc
		},
		Combiner: func(acc1 map[K]V, acc2 map[K]V) map[K]V {
			for k, v := range acc2 {
				acc1[k] = v
			}

			return acc1
		},
	}
}

// uniqueMap is the container of ToMapNoDuplicateKeys. It remembers the first duplicate key.
type uniqueMap[T any, K comparable, V any] struct {
	entries  map[K]V
	elements map[K]T
	keys     []K
	err      *DuplicateKeyError[T, K]
}

func (m *uniqueMap[T, K, V]) put(k K, elem T, value func(T) V) {
	if m.err != nil {
		return
	}

	if _, ok := m.entries[k]; ok {
		m.err = &DuplicateKeyError[T, K]{
			Element: elem,
			Key:     k,
		}

		return
	}

	m.entries[k] = value(elem)
	m.elements[k] = elem
	m.keys = append(m.keys, k)
}

// ToMapNoDuplicateKeys returns a collector that collects elements into a map.
// Elements are mapped using key and value, respectively.
// If a key is already in the map, the collection fails with a DuplicateKeyError holding the first duplicate.
func ToMapNoDuplicateKeys[T any, K comparable, V any](key func(T) K, value func(T) V) Collector[T, *uniqueMap[T, K, V], map[K]V] {
	return Collector[T, *uniqueMap[T, K, V], map[K]V]{
		Supplier: func() *uniqueMap[T, K, V] {
			return &uniqueMap[T, K, V]{
				entries:  map[K]V{},
				elements: map[K]T{},
			}
		},
		Accumulator: func(acc *uniqueMap[T, K, V], elem T) *uniqueMap[T, K, V] {
			acc.put(key(elem), elem, value)
			return acc
		},
		Combiner: func(acc1 *uniqueMap[T, K, V], acc2 *uniqueMap[T, K, V]) *uniqueMap[T, K, V] {
			if acc1.err != nil {
				return acc1
			}

			for _, k := range acc2.keys {
				acc1.put(k, acc2.elements[k], func(T) V {
					return acc2.entries[k]
				})
			}

			if acc1.err == nil {
				acc1.err = acc2.err
			}

			return acc1
		},
		Finisher: func(acc *uniqueMap[T, K, V]) (map[K]V, error) {
			if acc.err != nil {
				return nil, acc.err
			}

			return acc.entries, nil
		},
	}
}

// GroupingBy returns a collector that collects elements into a group map.
// Elements will be grouped into slices according to key, in encounter order.
func GroupingBy[T any, K comparable, V any](key func(T) K, value func(T) V) Collector[T, map[K][]V, map[K][]V] {
	return Collector[T, map[K][]V, map[K][]V]{
		Supplier: func() map[K][]V {
			return map[K][]V{}
		},
		Accumulator: func(acc map[K][]V, elem T) map[K][]V {
			k := key(elem)
			acc[k] = append(acc[k], value(elem))

			return acc
		},
		Combiner: func(acc1 map[K][]V, acc2 map[K][]V) map[K][]V {
			for k, values := range acc2 {
				acc1[k] = append(acc1[k], values...)
			}

			return acc1
		},
	}
}

// PartitioningBy returns a collector that collects elements into a partition map.
// Elements will be grouped into slices according to pred. Both keys are always present.
func PartitioningBy[T any, V any](pred func(T) bool, value func(T) V) Collector[T, map[bool][]V, map[bool][]V] {
	coll := GroupingBy(pred, value)

	coll.Finisher = func(acc map[bool][]V) (map[bool][]V, error) {
		for _, k := range []bool{false, true} {
			if _, ok := acc[k]; !ok {
				acc[k] = []V{}
			}
		}

		return acc, nil
	}

	return coll
}

// Joining returns a collector that concatenates the string representations of elements, separated by sep.
// Elements are formatted using fmt.Sprint.
func Joining[T any](sep string) Collector[T, []string, string] {
	return Collector[T, []string, string]{
		Supplier: func() []string {
			return []string{}
		},
		Accumulator: func(acc []string, elem T) []string {
			return append(acc, fmt.Sprint(elem))
		},
		Combiner: func(acc1 []string, acc2 []string) []string {
			return append(acc1, acc2...)
		},
		Finisher: func(acc []string) (string, error) {
			return strings.Join(acc, sep), nil
		},
	}
}

// Counting returns a collector that counts elements.
func Counting[T any]() Collector[T, int64, int64] {
	return Collector[T, int64, int64]{
		Supplier: func() int64 {
			return 0
		},
		Accumulator: func(acc int64, _ T) int64 {
			return acc + 1
		},
		Combiner: func(acc1 int64, acc2 int64) int64 {
			return acc1 + acc2
		},
	}
}

// Error implements error.
func (e *DuplicateKeyError[T, K]) Error() string {
	return fmt.Sprintf("duplicate key: %v", e.Key)
}
