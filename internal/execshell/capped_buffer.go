package execshell

import (
	"bytes"
	"sync"
)

// CappedBuffer is an io.Writer that retains at most the first limit bytes written to it.
// Writes past the limit are acknowledged in full and discarded so that a producer such as
// a subprocess pipe is always drained to completion.
type CappedBuffer struct {
	mutex     sync.Mutex
	buffer    bytes.Buffer
	limit     int64
	truncated bool
}

// NewCappedBuffer constructs a CappedBuffer. A non-positive limit retains everything.
func NewCappedBuffer(limit int64) *CappedBuffer {
	return &CappedBuffer{limit: limit}
}

// Write implements io.Writer.
func (cappedBuffer *CappedBuffer) Write(data []byte) (int, error) {
	cappedBuffer.mutex.Lock()
	defer cappedBuffer.mutex.Unlock()

	if cappedBuffer.limit <= 0 {
		return cappedBuffer.buffer.Write(data)
	}

	remainingCapacity := cappedBuffer.limit - int64(cappedBuffer.buffer.Len())
	if remainingCapacity <= 0 {
		if len(data) > 0 {
			cappedBuffer.truncated = true
		}
		return len(data), nil
	}

	if int64(len(data)) > remainingCapacity {
		cappedBuffer.buffer.Write(data[:remainingCapacity])
		cappedBuffer.truncated = true
		return len(data), nil
	}

	return cappedBuffer.buffer.Write(data)
}

// Bytes returns the retained content.
func (cappedBuffer *CappedBuffer) Bytes() []byte {
	cappedBuffer.mutex.Lock()
	defer cappedBuffer.mutex.Unlock()
	return append([]byte{}, cappedBuffer.buffer.Bytes()...)
}

// String returns the retained content as a string.
func (cappedBuffer *CappedBuffer) String() string {
	return string(cappedBuffer.Bytes())
}

// Truncated reports whether any written bytes were discarded.
func (cappedBuffer *CappedBuffer) Truncated() bool {
	cappedBuffer.mutex.Lock()
	defer cappedBuffer.mutex.Unlock()
	return cappedBuffer.truncated
}
