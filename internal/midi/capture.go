package midi

import (
	"sync"

	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// Capture is the packet sink of a platform client. Driver callbacks call
// Deliver from their own threads; Start and Stop come from the client.
// After Stop returns no further packet reaches the old channel.
type Capture struct {
	logger contracts.Logger
	filter *contracts.MIDIEventFilter

	mu sync.RWMutex
	ch chan contracts.Packet
}

// NewCapture creates an idle capture.
func NewCapture(logger contracts.Logger, filter *contracts.MIDIEventFilter) *Capture {
	return &Capture{logger: logger, filter: filter}
}

// Start directs packets to ch. It reports false, leaving the current
// channel in place, when ch is nil or a capture is already running.
func (c *Capture) Start(ch chan contracts.Packet) bool {
	if ch == nil {
		c.logger.Error("StartCapture called with nil packetChannel")
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ch != nil {
		c.logger.Warn("Capture already started")
		return false
	}
	c.ch = ch
	return true
}

// Active reports whether packets are being forwarded.
func (c *Capture) Active() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ch != nil
}

// Deliver forwards data if a capture is running.
func (c *Capture) Deliver(data []byte) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Deliver(c.ch, data, c.filter, c.logger)
}

// Stop ends forwarding, waiting for deliveries in flight. It reports
// whether a capture was running.
func (c *Capture) Stop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	active := c.ch != nil
	c.ch = nil
	return active
}
