// Package mutablestream provides lazy, single-use streams of elements whose chain of operations
// can be inspected before it is executed.
//
// A stream is rooted at a source, such as a slice, a channel, an iter.Seq, or any Source implementation.
// Intermediate operations such as Filter, Map, or Sorted do not process any elements. They append an
// Action to the stream's Pipeline and return a new stream over the extended pipeline. The pipeline is
// immutable, so streams derived from the same stream share the common part of their chains.
// Pipeline.Actions returns the chain without executing anything, which allows callers to inspect it
// and, for example, push filtering down into a remote query.
//
// Terminal operations such as ForEach, Reduce, or Collect execute the pipeline. Elements are pulled
// from the source one at a time, so short-circuiting operations like FindFirst or AnyMatch stop pulling
// as soon as their result is known. A stream can only be executed once. Calling a second terminal
// operation on it returns ErrPipelineReuse.
//
// Streams come in two flavors: Stream for elements of any type, and NumberStream for int32, int64
// and float64 elements, which adds numeric operations like Sum, Average, and SummaryStatistics.
// IntStream, LongStream and DoubleStream are aliases of the respective NumberStream types.
//
// Parallel streams run ForEach, Reduce, and Collect on multiple goroutines, see WithParallelism.
// ForEachOrdered and short-circuiting operations always run sequentially.
//
// Streams do not own their sources. AutoClose wraps a stream so that its source and any other resources
// are closed once a terminal operation has finished, whether it succeeded or not. All streams derived
// from an auto-closing stream share its resources, which are closed only once. ConcatAndAutoClose
// builds an auto-closing stream from several streams, closing all of them in order.
package mutablestream
