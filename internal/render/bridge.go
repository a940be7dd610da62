// Package render pulls audio blocks out of the synthesis engine and adapts
// them to the sinks used by hosts: planar buffers, byte streams and WAV files.
package render

import "github.com/leandrodaf/midisynth/sdk/contracts"

// Renderer produces planar stereo frames.
type Renderer interface {
	Process(frames int, left, right []float32)
}

// Bridge is the per-block render hook. It never allocates, locks or blocks.
type Bridge struct {
	engine contracts.Engine
}

// NewBridge returns a bridge over engine. A nil engine renders silence.
func NewBridge(engine contracts.Engine) *Bridge {
	return &Bridge{engine: engine}
}

// Process fills frames planar samples of left and right. The count is
// clamped to the shorter buffer.
func (b *Bridge) Process(frames int, left, right []float32) {
	n := min(frames, len(left), len(right))
	if n <= 0 {
		return
	}
	if b.engine == nil {
		clear(left[:n])
		clear(right[:n])
		return
	}
	b.engine.Render(left[:n], right[:n])
}
