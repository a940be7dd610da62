// Package decoder rebuilds MIDI events from a serial byte stream delivered one
// value at a time.
package decoder

import (
	"github.com/leandrodaf/midisynth/sdk/contracts"
)

const (
	sysExStart = 0xF0
	sysExEnd   = 0xF7
	realtime   = 0xF8
)

// Handler receives complete events. Channels are 1-based.
type Handler interface {
	Note(key, velocity, channel int)
	PolyPressure(value, key, channel int)
	ControlChange(controller, value, channel int)
	ProgramChange(program, channel int)
	ChannelPressure(value, channel int)
	PitchBend(value, channel int)
	// SystemExclusive receives the payload between the markers. The slice
	// aliases the decoder buffer and is only valid during the call.
	SystemExclusive(data []byte)
}

// State is the decoder's complete mutable state, exposed for inspection.
type State struct {
	InSysEx  bool                 // Inside a 0xF0 ... 0xF7 block.
	SysEx    []byte               // Fixed-capacity accumulation buffer.
	SysExLen int                  // Valid bytes in SysEx.
	Status   contracts.StatusType // Pending status kind, None when cleared.
	Channel  int                  // Pending channel, 1..16.
	Data     byte                 // First data byte of a two-byte message.
	Ready    bool                 // The next data byte completes the message.
}

// Decoder is a per-stream MIDI state machine. It is not safe for concurrent
// use; callers serialize Feed with everything else touching the same instance.
type Decoder struct {
	state   State
	handler Handler
	dropped uint64
	aborted uint64
}

// New creates a decoder with a sysex buffer of the given capacity. A
// non-positive capacity selects contracts.DefaultSysExCapacity.
func New(h Handler, capacity int) *Decoder {
	if capacity <= 0 {
		capacity = contracts.DefaultSysExCapacity
	}
	return &Decoder{
		state:   State{SysEx: make([]byte, capacity)},
		handler: h,
	}
}

// Capacity returns the sysex buffer capacity.
func (d *Decoder) Capacity() int {
	return len(d.state.SysEx)
}

// State returns a copy of the current state. The SysEx slice is shared.
func (d *Decoder) State() State {
	return d.state
}

// Dropped returns the number of sysex bytes discarded because the buffer was full.
func (d *Decoder) Dropped() uint64 {
	return d.dropped
}

// Aborted returns the number of sysex blocks cut short by a status byte.
func (d *Decoder) Aborted() uint64 {
	return d.aborted
}

// Reset returns the decoder to idle.
func (d *Decoder) Reset() {
	d.state.InSysEx = false
	d.state.SysExLen = 0
	d.clear()
}

// Write feeds every byte of p. It never fails.
func (d *Decoder) Write(p []byte) (int, error) {
	for _, b := range p {
		d.Feed(int(b))
	}
	return len(p), nil
}

// Feed consumes a single value. Values outside 0..255 clear the pending
// message. Malformed input is absorbed silently.
func (d *Decoder) Feed(v int) {
	if v < 0 || v > 0xFF {
		d.clear()
		return
	}
	b := byte(v)
	s := &d.state

	switch {
	case b >= realtime:
		// Real-time bytes may interleave anywhere and carry no channel data.
	case b == sysExStart:
		s.InSysEx = true
		s.SysExLen = 0
	case b == sysExEnd:
		if !s.InSysEx {
			return
		}
		d.handler.SystemExclusive(s.SysEx[:s.SysExLen])
		s.InSysEx = false
		s.SysExLen = 0
	case b > 0x7F:
		if s.InSysEx {
			s.InSysEx = false
			s.SysExLen = 0
			d.aborted++
		}
		s.Status = contracts.StatusTypeOf(b)
		if s.Status == contracts.None {
			// System common 0xF1-0xF6: nothing pending survives it.
			d.clear()
			return
		}
		s.Channel = int(b&0x0F) + 1
		s.Data = 0
		s.Ready = s.Status.DataBytes() == 1
	case s.InSysEx:
		if s.SysExLen < len(s.SysEx) {
			s.SysEx[s.SysExLen] = b
			s.SysExLen++
		} else {
			d.dropped++
		}
	case s.Ready:
		d.dispatch(int(b))
		d.clear()
	default:
		s.Data = b
		s.Ready = true
	}
}

func (d *Decoder) dispatch(v int) {
	s := &d.state
	data := int(s.Data)
	switch s.Status {
	case contracts.NoteOffStatus:
		d.handler.Note(data, 0, s.Channel)
	case contracts.NoteOnStatus:
		d.handler.Note(data, v, s.Channel)
	case contracts.PolyPressureStatus:
		d.handler.PolyPressure(v, data, s.Channel)
	case contracts.ControlChangeStatus:
		d.handler.ControlChange(data, v, s.Channel)
	case contracts.ProgramChangeStatus:
		d.handler.ProgramChange(v, s.Channel)
	case contracts.ChannelPressureStatus:
		d.handler.ChannelPressure(v, s.Channel)
	case contracts.PitchBendStatus:
		d.handler.PitchBend(v<<7+data, s.Channel)
	}
}

// clear drops the pending message. The channel is left as is; it is only
// meaningful while Status is not None.
func (d *Decoder) clear() {
	d.state.Status = contracts.None
	d.state.Ready = false
	d.state.Data = 0
}
