// Package midi holds the packet plumbing shared by the platform device clients.
package midi

import (
	"time"

	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// MessageLength returns the length in bytes of the short message starting
// with status, or 0 for sysex, data bytes and undefined status bytes.
func MessageLength(status byte) int {
	switch {
	case status < 0x80:
		return 0
	case status < 0xF0:
		return 1 + contracts.StatusTypeOf(status).DataBytes()
	}
	switch status {
	case 0xF1, 0xF3: // time code quarter frame, song select
		return 2
	case 0xF2: // song position
		return 3
	case 0xF6, 0xF8, 0xFA, 0xFB, 0xFC, 0xFE, 0xFF:
		return 1
	default:
		return 0
	}
}

// Deliver copies data into a timestamped packet and sends it to ch without
// blocking. Packets rejected by filter are skipped; a full channel drops the
// packet with a warning. It reports whether the packet was queued.
func Deliver(ch chan<- contracts.Packet, data []byte, filter *contracts.MIDIEventFilter, logger contracts.Logger) bool {
	if ch == nil || len(data) == 0 || !filter.Allows(data[0]) {
		return false
	}
	packet := contracts.Packet{
		Timestamp: uint64(time.Now().UTC().UnixNano()),
		Data:      append([]byte(nil), data...),
	}
	select {
	case ch <- packet:
		return true
	default:
		logger.Warn("Packet buffer full; dropping MIDI packet", logger.Field().Int("bytes", len(data)))
		return false
	}
}
