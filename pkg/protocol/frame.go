package protocol

import (
	"bytes"
	"errors"
)

// MaxFrameSize bounds how much data the framer buffers while waiting for a
// newline. A well-behaved server stays far below this; hitting it means the
// stream is corrupt or not speaking the protocol.
const MaxFrameSize = 16 << 20

// ErrFrameTooLarge is returned by Append when the buffered partial frame
// exceeds MaxFrameSize.
var ErrFrameTooLarge = errors.New("protocol: frame exceeds maximum size")

// LineFramer splits a byte stream into newline-delimited frames. It buffers
// partial frames across Append calls and never fragments or duplicates a
// frame. The zero value is ready to use.
type LineFramer struct {
	buf []byte
}

// Append adds raw bytes read from the transport.
func (f *LineFramer) Append(p []byte) error {
	if len(f.buf)+len(p) > MaxFrameSize {
		return ErrFrameTooLarge
	}
	f.buf = append(f.buf, p...)
	return nil
}

// Next pops the earliest complete frame, without its newline delimiter. It
// returns false when no complete frame is buffered.
func (f *LineFramer) Next() ([]byte, bool) {
	i := bytes.IndexByte(f.buf, '\n')
	if i < 0 {
		return nil, false
	}
	frame := make([]byte, i)
	copy(frame, f.buf[:i])
	f.buf = f.buf[i+1:]
	return frame, true
}

// Buffered reports the number of bytes waiting for a delimiter.
func (f *LineFramer) Buffered() int {
	return len(f.buf)
}

// Reset discards buffered bytes. Used when the underlying connection is
// replaced: a partial frame from the old connection must not be glued to
// bytes from the new one.
func (f *LineFramer) Reset() {
	f.buf = f.buf[:0]
}
