package mutablestream

import (
	"context"
	"fmt"
	"math"
	"reflect"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// cursor pulls elements through an opened pipeline.
// next returns ok == false once the cursor is exhausted.
// release frees whatever the cursor holds, and must be called exactly once.
type cursor struct {
	next    func(ctx context.Context) (any, bool, error)
	release func() error
}

// stage wraps the upstream cursor of an action.
// A stage is called once per execution, so any state it needs lives in the returned cursor.
type stage func(up *cursor) *cursor

func (c *cursor) close() error {
	if c.release == nil {
		return nil
	}

	release := c.release
	c.release = nil

	return release()
}

// derive returns a cursor using next, releasing up when released.
func derive(up *cursor, next func(ctx context.Context) (any, bool, error)) *cursor {
	return &cursor{
		next:    next,
		release: up.close,
	}
}

func filterStage(filter func(elem any) bool) stage {
	return func(up *cursor) *cursor {
		return derive(up, func(ctx context.Context) (any, bool, error) {
			for {
				elem, ok, err := up.next(ctx)
				if err != nil || !ok {
					return nil, false, err
				}

				if filter(elem) {
					return elem, true, nil
				}
			}
		})
	}
}

func mapStage(mapp func(elem any) any) stage {
	return func(up *cursor) *cursor {
		return derive(up, func(ctx context.Context) (any, bool, error) {
			elem, ok, err := up.next(ctx)
			if err != nil || !ok {
				return nil, false, err
			}

			return mapp(elem), true, nil
		})
	}
}

// flatMapStage produces the elements of the sub-streams that expand opens, in order.
// Each sub-stream is closed once it is exhausted, or when the cursor is released.
func flatMapStage(expand func(elem any) (*cursor, error)) stage {
	return func(up *cursor) *cursor {
		var sub *cursor

		return &cursor{
			next: func(ctx context.Context) (any, bool, error) {
				for {
					if sub != nil {
						elem, ok, err := sub.next(ctx)
						if err != nil {
							return nil, false, err
						}

						if ok {
							return elem, true, nil
						}

						err = sub.close()
						sub = nil

						if err != nil {
							return nil, false, err
						}
					}

					elem, ok, err := up.next(ctx)
					if err != nil || !ok {
						return nil, false, err
					}

					if sub, err = expand(elem); err != nil {
						return nil, false, err
					}
				}
			},

			release: func() error {
				var err error

				if sub != nil {
					err = sub.close()
					sub = nil
				}

				return aggregate(err, up.close())
			},
		}
	}
}

func distinctStage() stage {
	return func(up *cursor) *cursor {
		seen := map[any]struct{}{}

		return derive(up, func(ctx context.Context) (any, bool, error) {
			for {
				elem, ok, err := up.next(ctx)
				if err != nil || !ok {
					return nil, false, err
				}

				if elem != nil && !reflect.ValueOf(elem).Comparable() {
					return nil, false, fmt.Errorf("distinct: %T: %w", elem, ErrNotComparable)
				}

				key := distinctKey(elem)
				if _, ok := seen[key]; ok {
					continue
				}

				seen[key] = struct{}{}

				return elem, true, nil
			}
		})
	}
}

// floatKey identifies a floating-point element by its type and bits.
type floatKey struct {
	typ  reflect.Type
	bits uint64
}

// distinctKey returns the key elem is deduplicated by. Floating-point elements are compared by their bits,
// so all NaNs are equal to each other and -0 differs from +0.
func distinctKey(elem any) any {
	if elem == nil {
		return nil
	}

	val := reflect.ValueOf(elem)

	switch val.Kind() { //nolint:exhaustive // only floats need normalizing
	case reflect.Float32, reflect.Float64:
		f := val.Float()
		if math.IsNaN(f) {
			f = math.NaN()
		}

		return floatKey{typ: val.Type(), bits: math.Float64bits(f)}

	default:
		return elem
	}
}

// sortedStage consumes all upstream elements on the first pull, sorts them using compare, and produces them
// in sorted order. The sort is stable.
func sortedStage(compare func(a any, b any) (int, error)) stage {
	return func(up *cursor) *cursor {
		var (
			result []any
			pos    int
			loaded bool
		)

		return derive(up, func(ctx context.Context) (any, bool, error) {
			if !loaded {
				loaded = true

				for {
					if err := contextErr(ctx); err != nil {
						return nil, false, err
					}

					elem, ok, err := up.next(ctx)
					if err != nil {
						return nil, false, err
					}

					if !ok {
						break
					}

					result = append(result, elem)
				}

				var sortErr error

				slices.SortStableFunc(result, func(a any, b any) bool {
					if sortErr != nil {
						return false
					}

					c, err := compare(a, b)
					if err != nil {
						sortErr = err
						return false
					}

					return c < 0
				})

				if sortErr != nil {
					result = nil
					return nil, false, sortErr
				}
			}

			if pos >= len(result) {
				return nil, false, nil
			}

			elem := result[pos]
			result[pos] = nil
			pos++

			return elem, true, nil
		})
	}
}

// limitStage stops pulling from upstream once maxSize elements have been produced.
func limitStage(maxSize int64) stage {
	return func(up *cursor) *cursor {
		done := int64(0)

		return derive(up, func(ctx context.Context) (any, bool, error) {
			if done >= maxSize {
				return nil, false, nil
			}

			elem, ok, err := up.next(ctx)
			if ok {
				done++
			}

			return elem, ok, err
		})
	}
}

func skipStage(num int64) stage {
	return func(up *cursor) *cursor {
		skipped := int64(0)

		return derive(up, func(ctx context.Context) (any, bool, error) {
			for skipped < num {
				_, ok, err := up.next(ctx)
				if err != nil || !ok {
					return nil, false, err
				}

				skipped++
			}

			return up.next(ctx)
		})
	}
}

func compareOrdered[O constraints.Ordered](a O, b O) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compareFloat orders NaN above all other values, and -0 below +0.
func compareFloat(a float64, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}

	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)

	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	}

	aNeg, bNeg := math.Signbit(a), math.Signbit(b)

	switch {
	case aNeg == bNeg:
		return 0
	case aNeg:
		return -1
	default:
		return 1
	}
}

func compareNumbers[N Number](a N, b N) int {
	if _, ok := any(a).(float64); ok {
		return compareFloat(float64(a), float64(b))
	}

	return compareOrdered(a, b)
}

// compareNatural compares a and b by their natural order, which is defined for values of the same
// integer, floating point, or string kind.
func compareNatural(a any, b any) (int, error) {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)

	if !va.IsValid() || !vb.IsValid() || va.Type() != vb.Type() {
		return 0, fmt.Errorf("sorted: %T and %T: %w", a, b, ErrNotComparable)
	}

	switch va.Kind() { //nolint:exhaustive // everything else is not comparable
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return compareOrdered(va.Int(), vb.Int()), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return compareOrdered(va.Uint(), vb.Uint()), nil

	case reflect.Float32, reflect.Float64:
		return compareFloat(va.Float(), vb.Float()), nil

	case reflect.String:
		return compareOrdered(va.String(), vb.String()), nil

	default:
		return 0, fmt.Errorf("sorted: %T: %w", a, ErrNotComparable)
	}
}

// naturalOrder returns a comparator for T's natural order.
// Types with a Compare(T) int method are ordered by that method, all other types by compareNatural.
func naturalOrder[T any]() func(a any, b any) (int, error) {
	var zero T

	if _, ok := any(zero).(interface{ Compare(other T) int }); ok {
		return func(a any, b any) (int, error) {
			return any(unbox[T](a)).(interface{ Compare(other T) int }).Compare(unbox[T](b)), nil
		}
	}

	return compareNatural
}

// comparatorOrder adapts compare to the erased comparator used by sortedStage.
func comparatorOrder[T any](compare func(a T, b T) int) func(a any, b any) (int, error) {
	return func(a any, b any) (int, error) {
		return compare(unbox[T](a), unbox[T](b)), nil
	}
}
