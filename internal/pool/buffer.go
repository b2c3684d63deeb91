// Package pool provides pooled transfer buffers for staging I/O.
//
// Fingerprinting and uploads stream artifacts through fixed-size chunks;
// pooling the chunk buffers keeps a large batch from allocating one buffer
// per in-flight resource.
package pool

import (
	"sync"
)

// TransferBufferSize is the capacity of pooled transfer buffers (1 MiB).
// It matches the hard ceiling on the configurable upload buffer size, so a
// pooled buffer can always be sliced down to the effective chunk size.
const TransferBufferSize = 1024 * 1024

var transfer = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, TransferBufferSize)
		return &buf
	},
}

// GetTransfer returns a transfer buffer sliced to the requested size.
// A size of 0, a negative size, or a size above TransferBufferSize yields a
// full-capacity buffer. The caller is responsible for calling PutTransfer.
func GetTransfer(size int) []byte {
	if size <= 0 || size > TransferBufferSize {
		size = TransferBufferSize
	}
	bufPtr := transfer.Get().(*[]byte)
	return (*bufPtr)[:size]
}

// PutTransfer returns a transfer buffer to the pool.
// The buffer should not be used after calling PutTransfer. Buffers that did
// not come from the pool are dropped.
func PutTransfer(buf []byte) {
	if cap(buf) != TransferBufferSize {
		return
	}
	buf = buf[:TransferBufferSize]
	transfer.Put(&buf)
}
