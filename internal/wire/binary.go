package wire

import (
	"encoding/binary"
	"fmt"

	pool "github.com/IrineSistiana/go-bytes-pool"
)

// Frames are at most RequestSize bytes, so 4 bits of size classes is plenty.
var bytesPool = pool.NewPool(4)

const (
	// RequestSize is the length of a binary add request: a then b, big-endian.
	RequestSize = 4 + 4
	// ResultSize is the length of a binary result: the sum then a flags byte.
	ResultSize = 4 + 1

	flagOverflow byte = 1 << 0
)

// PackRequest encodes a binary add request into a pooled buffer. The caller
// must hand the buffer back with Release.
func PackRequest(a, b int32) *[]byte {
	bp := bytesPool.Get(RequestSize)
	buf := *bp
	binary.BigEndian.PutUint32(buf[0:4], uint32(a))
	binary.BigEndian.PutUint32(buf[4:8], uint32(b))
	return bp
}

// UnpackRequest decodes a binary add request.
func UnpackRequest(buf []byte) (a, b int32, err error) {
	if len(buf) != RequestSize {
		return 0, 0, fmt.Errorf("binary request must be %d bytes, got %d", RequestSize, len(buf))
	}
	return int32(binary.BigEndian.Uint32(buf[0:4])), int32(binary.BigEndian.Uint32(buf[4:8])), nil
}

// PackResult encodes a binary result into a pooled buffer. The caller must
// hand the buffer back with Release.
func PackResult(sum int32, overflowed bool) *[]byte {
	bp := bytesPool.Get(ResultSize)
	buf := *bp
	binary.BigEndian.PutUint32(buf[0:4], uint32(sum))
	buf[4] = 0
	if overflowed {
		buf[4] |= flagOverflow
	}
	return bp
}

// UnpackResult decodes a binary result.
func UnpackResult(buf []byte) (sum int32, overflowed bool, err error) {
	if len(buf) != ResultSize {
		return 0, false, fmt.Errorf("binary result must be %d bytes, got %d", ResultSize, len(buf))
	}
	return int32(binary.BigEndian.Uint32(buf[0:4])), buf[4]&flagOverflow != 0, nil
}

// Release returns a buffer obtained from PackRequest or PackResult.
func Release(bp *[]byte) {
	bytesPool.Release(bp)
}
