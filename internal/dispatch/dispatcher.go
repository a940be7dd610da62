// Package dispatch translates structured MIDI events into synthesis engine calls.
package dispatch

import (
	"sync/atomic"

	"github.com/leandrodaf/midisynth/sdk/contracts"
)

const (
	maxData7   = 0x7F
	maxData14  = 0x3FFF
	generators = 63 // SoundFont 2.04 generator enumerators 0..62.
)

// Dispatcher validates events and forwards them to the engine with 0-based
// channels. Invalid events are dropped and counted, never reported. With a
// nil engine every operation is a no-op.
type Dispatcher struct {
	engine   contracts.Engine
	channels int
	ignored  atomic.Uint64
}

// New creates a dispatcher for an engine exposing the given number of
// channels. A non-positive count selects 16.
func New(engine contracts.Engine, channels int) *Dispatcher {
	if channels <= 0 {
		channels = 16
	}
	return &Dispatcher{engine: engine, channels: channels}
}

// Available reports whether an engine is attached.
func (d *Dispatcher) Available() bool {
	return d.engine != nil
}

// Ignored returns the number of events dropped for range errors.
func (d *Dispatcher) Ignored() uint64 {
	return d.ignored.Load()
}

// channel converts a 1-based channel, reporting false when out of range.
func (d *Dispatcher) channel(ch int) (int, bool) {
	if ch < 1 || ch > d.channels {
		return 0, false
	}
	return ch - 1, true
}

func in7(v ...int) bool {
	for _, x := range v {
		if x < 0 || x > maxData7 {
			return false
		}
	}
	return true
}

func (d *Dispatcher) drop() {
	d.ignored.Add(1)
}

// Note starts a note, or stops it when velocity is 0.
func (d *Dispatcher) Note(key, velocity, channel int) {
	if d.engine == nil {
		return
	}
	ch, ok := d.channel(channel)
	if !ok || !in7(key, velocity) {
		d.drop()
		return
	}
	d.engine.NoteOn(ch, key, velocity)
}

// ProgramChange selects a preset on the channel's current bank.
func (d *Dispatcher) ProgramChange(program, channel int) {
	if d.engine == nil {
		return
	}
	ch, ok := d.channel(channel)
	if !ok || !in7(program) {
		d.drop()
		return
	}
	d.engine.ProgramChange(ch, program)
}

// ControlChange sets a continuous controller.
func (d *Dispatcher) ControlChange(controller, value, channel int) {
	if d.engine == nil {
		return
	}
	ch, ok := d.channel(channel)
	if !ok || !in7(controller, value) {
		d.drop()
		return
	}
	d.engine.ControlChange(ch, controller, value)
}

// PitchBend sets the 14-bit bend value, 8192 being the center.
func (d *Dispatcher) PitchBend(value, channel int) {
	if d.engine == nil {
		return
	}
	ch, ok := d.channel(channel)
	if !ok || value < 0 || value > maxData14 {
		d.drop()
		return
	}
	d.engine.PitchBend(ch, value)
}

// ChannelPressure sets monophonic aftertouch.
func (d *Dispatcher) ChannelPressure(value, channel int) {
	if d.engine == nil {
		return
	}
	ch, ok := d.channel(channel)
	if !ok || !in7(value) {
		d.drop()
		return
	}
	d.engine.ChannelPressure(ch, value)
}

// PolyPressure sets aftertouch for a single key. The pressure comes first,
// matching the control surface argument order.
func (d *Dispatcher) PolyPressure(value, key, channel int) {
	if d.engine == nil {
		return
	}
	ch, ok := d.channel(channel)
	if !ok || !in7(value, key) {
		d.drop()
		return
	}
	d.engine.KeyPressure(ch, key, value)
}

// BankSelect chooses the bank used by the next program change.
func (d *Dispatcher) BankSelect(bank, channel int) {
	if d.engine == nil {
		return
	}
	ch, ok := d.channel(channel)
	if !ok || bank < 0 || bank > maxData14 {
		d.drop()
		return
	}
	d.engine.BankSelect(ch, bank)
}

// RawParameter overrides a SoundFont generator on a channel. The value is
// passed through without clamping.
func (d *Dispatcher) RawParameter(channel, param int, value float32) {
	if d.engine == nil {
		return
	}
	ch, ok := d.channel(channel)
	if !ok || param < 0 || param >= generators {
		d.drop()
		return
	}
	d.engine.SetGenerator(ch, param, value)
}

// SystemExclusive forwards a sysex payload verbatim. Empty blocks are dropped.
// Replies produced by the engine are not collected.
func (d *Dispatcher) SystemExclusive(data []byte) {
	if d.engine == nil {
		return
	}
	if len(data) == 0 {
		d.drop()
		return
	}
	d.engine.SysEx(data)
}
