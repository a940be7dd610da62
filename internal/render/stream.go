package render

import (
	"encoding/binary"
	"math"
)

const (
	// BytesPerFrame is the size of one interleaved stereo float32 frame.
	BytesPerFrame = 8
	// DefaultBlock is the number of frames rendered per refill.
	DefaultBlock = 512
)

// Stream adapts a Renderer to io.Reader, producing interleaved stereo
// float32 little-endian samples as expected by oto.FormatFloat32LE.
// It never returns an error and never ends.
type Stream struct {
	src         Renderer
	left, right []float32
	buf         []byte
	pos         int
}

// NewStream creates a stream rendering block frames at a time. A
// non-positive block selects DefaultBlock.
func NewStream(src Renderer, block int) *Stream {
	if block <= 0 {
		block = DefaultBlock
	}
	return &Stream{
		src:   src,
		left:  make([]float32, block),
		right: make([]float32, block),
		buf:   make([]byte, 0, block*BytesPerFrame),
	}
}

// Read fills p with whole or partial frames, rendering new blocks as needed.
func (s *Stream) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if s.pos == len(s.buf) {
			s.fill()
		}
		c := copy(p[n:], s.buf[s.pos:])
		s.pos += c
		n += c
	}
	return n, nil
}

func (s *Stream) fill() {
	s.src.Process(len(s.left), s.left, s.right)
	s.buf = s.buf[:len(s.left)*BytesPerFrame]
	for i := range s.left {
		binary.LittleEndian.PutUint32(s.buf[i*8:], math.Float32bits(s.left[i]))
		binary.LittleEndian.PutUint32(s.buf[i*8+4:], math.Float32bits(s.right[i]))
	}
	s.pos = 0
}
