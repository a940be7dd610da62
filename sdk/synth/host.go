package synth

import (
	"context"
	"io"
	"sync"

	"github.com/leandrodaf/midisynth/internal/render"
	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// Host serializes the event and audio entry points of a Synth with a single
// mutex, so device input, control lines and an audio sink can run on their
// own goroutines. Lock hold times are one packet or one audio block.
type Host struct {
	mu    sync.Mutex
	synth *Synth
	block int
}

// NewHost wraps s. block is the number of frames rendered per lock when
// reading audio; non-positive selects render.DefaultBlock.
func NewHost(s *Synth, block int) *Host {
	if block <= 0 {
		block = render.DefaultBlock
	}
	return &Host{synth: s, block: block}
}

// Do runs fn with exclusive access to the synth.
func (h *Host) Do(fn func(s *Synth)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(h.synth)
}

// Feed decodes raw MIDI bytes.
func (h *Host) Feed(data []byte) {
	h.mu.Lock()
	h.synth.Feed(data)
	h.mu.Unlock()
}

// SendLine routes one control message.
func (h *Host) SendLine(line string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.synth.SendLine(line)
}

// Load resolves and loads a soundfont. Audio is held for the duration.
func (h *Host) Load(name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.synth.Load(name)
}

// Reload loads the soundfont at path again, as a file watcher callback.
func (h *Host) Reload(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	// Failures are logged and the previous soundfont stays.
	_ = h.synth.LoadFile(path)
}

// Process renders one block. It implements render.Renderer.
func (h *Host) Process(frames int, left, right []float32) {
	h.mu.Lock()
	h.synth.Process(frames, left, right)
	h.mu.Unlock()
}

// Reader returns an endless interleaved float32 little-endian audio stream.
func (h *Host) Reader() io.Reader {
	return render.NewStream(h, h.block)
}

// Capture feeds every packet received on packets to the decoder until ctx
// is done or packets is closed.
func (h *Host) Capture(ctx context.Context, packets <-chan contracts.Packet) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case p, ok := <-packets:
			if !ok {
				return nil
			}
			h.Feed(p.Data)
		}
	}
}
