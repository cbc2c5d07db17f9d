package mutablestream

import (
	"fmt"
	"math"
)

// SummaryStatistics collects count, sum, minimum, and maximum of numbers.
// The zero value is ready to use. Min and Max are 0 if Count is 0.
type SummaryStatistics[N Number] struct {
	Count int64
	Min   N
	Max   N

	intSum   int64
	floatSum compensatedSum
}

// compensatedSum is a Kahan summation of float64 values.
type compensatedSum struct {
	sum          float64
	compensation float64
	simple       float64
}

// Accept adds v to s.
func (s *SummaryStatistics[N]) Accept(v N) {
	if s.Count == 0 {
		s.Min, s.Max = v, v
	} else {
		if compareNumbers(v, s.Min) < 0 {
			s.Min = v
		}

		if compareNumbers(v, s.Max) > 0 {
			s.Max = v
		}
	}

	s.Count++

	if f, ok := any(v).(float64); ok {
		s.floatSum.add(f)
		s.floatSum.simple += f

		return
	}

	s.intSum += int64(v)
}

// Combine adds all numbers collected by other to s.
func (s *SummaryStatistics[N]) Combine(other SummaryStatistics[N]) {
	if other.Count == 0 {
		return
	}

	if s.Count == 0 {
		*s = other
		return
	}

	if compareNumbers(other.Min, s.Min) < 0 {
		s.Min = other.Min
	}

	if compareNumbers(other.Max, s.Max) > 0 {
		s.Max = other.Max
	}

	s.Count += other.Count
	s.intSum += other.intSum

	s.floatSum.add(other.floatSum.sum)
	s.floatSum.add(-other.floatSum.compensation)
	s.floatSum.simple += other.floatSum.simple
}

// Sum returns the sum of all numbers.
// Integer sums wrap around on overflow, float64 sums are compensated for rounding errors.
func (s SummaryStatistics[N]) Sum() N {
	var zero N

	if _, ok := any(zero).(float64); ok {
		return N(s.floatSum.value())
	}

	return N(s.intSum)
}

// Average returns the arithmetic mean of all numbers, or 0 if Count is 0.
func (s SummaryStatistics[N]) Average() float64 {
	if s.Count == 0 {
		return 0
	}

	var zero N

	if _, ok := any(zero).(float64); ok {
		return s.floatSum.value() / float64(s.Count)
	}

	return float64(s.intSum) / float64(s.Count)
}

// String implements fmt.Stringer.
func (s SummaryStatistics[N]) String() string {
	return fmt.Sprintf("{count=%d, sum=%v, min=%v, average=%v, max=%v}", s.Count, s.Sum(), s.Min, s.Average(), s.Max)
}

func (c *compensatedSum) add(v float64) {
	y := v - c.compensation
	t := c.sum + y
	c.compensation = (t - c.sum) - y
	c.sum = t
}

func (c compensatedSum) value() float64 {
	v := c.sum - c.compensation
	if math.IsNaN(v) && math.IsInf(c.simple, 0) {
		return c.simple
	}

	return v
}

func statisticsTerminator[N Number](kind TerminalKind, parallel bool) Terminator[SummaryStatistics[N]] {
	return foldTerminator(kind, parallel, nil,
		func() SummaryStatistics[N] {
			return SummaryStatistics[N]{}
		},
		func(acc SummaryStatistics[N], elem N) SummaryStatistics[N] {
			acc.Accept(elem)
			return acc
		},
		func(a SummaryStatistics[N], b SummaryStatistics[N]) SummaryStatistics[N] {
			a.Combine(b)
			return a
		})
}
