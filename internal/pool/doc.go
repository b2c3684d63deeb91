// Package pool provides pooled transfer buffers for staging I/O.
//
// The pool keeps large staging batches from allocating one chunk buffer per
// in-flight resource.
package pool
