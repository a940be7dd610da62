package decoder

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/leandrodaf/midisynth/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
)

type event struct {
	kind string
	a, b int
	ch   int
	data []byte
}

type recorder struct {
	events []event
}

func (r *recorder) Note(key, velocity, channel int) {
	r.events = append(r.events, event{"note", key, velocity, channel, nil})
}

func (r *recorder) PolyPressure(value, key, channel int) {
	r.events = append(r.events, event{"polytouch", value, key, channel, nil})
}

func (r *recorder) ControlChange(controller, value, channel int) {
	r.events = append(r.events, event{"ctl", controller, value, channel, nil})
}

func (r *recorder) ProgramChange(program, channel int) {
	r.events = append(r.events, event{"pgm", program, 0, channel, nil})
}

func (r *recorder) ChannelPressure(value, channel int) {
	r.events = append(r.events, event{"touch", value, 0, channel, nil})
}

func (r *recorder) PitchBend(value, channel int) {
	r.events = append(r.events, event{"bend", value, 0, channel, nil})
}

func (r *recorder) SystemExclusive(data []byte) {
	r.events = append(r.events, event{"sysex", len(data), 0, 0, bytes.Clone(data)})
}

func feed(d *Decoder, values ...int) {
	for _, v := range values {
		d.Feed(v)
	}
}

func TestChannelMessages(t *testing.T) {
	tests := []struct {
		name  string
		input midi.Message
		want  event
	}{
		{"note on", midi.NoteOn(0, 60, 100), event{"note", 60, 100, 1, nil}},
		{"note on channel 16", midi.NoteOn(15, 61, 1), event{"note", 61, 1, 16, nil}},
		{"note off becomes zero velocity", midi.NoteOffVelocity(2, 64, 90), event{"note", 64, 0, 3, nil}},
		{"poly pressure", midi.PolyAfterTouch(1, 72, 33), event{"polytouch", 33, 72, 2, nil}},
		{"control change", midi.ControlChange(4, 7, 99), event{"ctl", 7, 99, 5, nil}},
		{"program change", midi.ProgramChange(9, 42), event{"pgm", 42, 0, 10, nil}},
		{"channel pressure", midi.AfterTouch(0, 77), event{"touch", 77, 0, 1, nil}},
		{"pitch bend center", midi.Pitchbend(0, 0), event{"bend", 8192, 0, 1, nil}},
		{"pitch bend max", midi.Pitchbend(3, 8191), event{"bend", 16383, 0, 4, nil}},
		{"pitch bend min", midi.Pitchbend(3, -8192), event{"bend", 0, 0, 4, nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			d := New(r, 0)
			if _, err := d.Write(tt.input.Bytes()); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if len(r.events) != 1 {
				t.Fatalf("got %d events, want 1: %+v", len(r.events), r.events)
			}
			if !reflect.DeepEqual(r.events[0], tt.want) {
				t.Errorf("event = %+v, want %+v", r.events[0], tt.want)
			}
			s := d.State()
			if s.Status != contracts.None || s.Ready {
				t.Errorf("pending state not cleared: %+v", s)
			}
		})
	}
}

func TestPitchBendComposition(t *testing.T) {
	r := &recorder{}
	d := New(r, 0)
	feed(d, 0xE0, 0x00, 0x40)
	if len(r.events) != 1 || r.events[0].a != 8192 {
		t.Fatalf("events = %+v, want one bend of 8192", r.events)
	}
}

func TestNoteOffMatchesZeroVelocityNoteOn(t *testing.T) {
	off, on := &recorder{}, &recorder{}
	feed(New(off, 0), 0x85, 48, 127)
	feed(New(on, 0), 0x95, 48, 0)
	if !reflect.DeepEqual(off.events, on.events) {
		t.Errorf("note off %+v != note on vel 0 %+v", off.events, on.events)
	}
}

func TestRunningStatusIsNotSupported(t *testing.T) {
	r := &recorder{}
	d := New(r, 0)
	feed(d, 0x90, 60, 100, 62, 100)
	if len(r.events) != 1 {
		t.Fatalf("got %d events, want only the first note: %+v", len(r.events), r.events)
	}
	// The orphan pair is swallowed and the decoder still works.
	feed(d, 0x90, 64, 90)
	if len(r.events) != 2 || r.events[1].a != 64 {
		t.Errorf("events = %+v", r.events)
	}
}

func TestPartialStateBetweenBytes(t *testing.T) {
	r := &recorder{}
	d := New(r, 0)

	d.Feed(0x93)
	s := d.State()
	if s.Status != contracts.NoteOnStatus || s.Channel != 4 || s.Ready {
		t.Fatalf("after status: %+v", s)
	}
	d.Feed(60)
	s = d.State()
	if !s.Ready || s.Data != 60 {
		t.Fatalf("after first data byte: %+v", s)
	}

	d.Feed(0xC1)
	s = d.State()
	if s.Status != contracts.ProgramChangeStatus || !s.Ready || s.Channel != 2 {
		t.Fatalf("program change should be ready at status time: %+v", s)
	}
	if len(r.events) != 0 {
		t.Fatalf("unexpected events %+v", r.events)
	}
}

func TestSysExRoundTrip(t *testing.T) {
	r := &recorder{}
	d := New(r, 0)
	feed(d, 0xF0, 0x01, 0x02, 0x03, 0xF7)

	if len(r.events) != 1 {
		t.Fatalf("got %d events, want 1", len(r.events))
	}
	if got := r.events[0].data; !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Errorf("sysex payload = %v, want [1 2 3]", got)
	}
	s := d.State()
	if s.InSysEx || s.SysExLen != 0 {
		t.Errorf("sysex state not cleared: %+v", s)
	}
}

func TestSysExCapacity(t *testing.T) {
	const capacity = 16
	r := &recorder{}
	d := New(r, capacity)
	d.Feed(0xF0)
	for i := 0; i < capacity+10; i++ {
		d.Feed(i & 0x7F)
	}
	if got := d.State().SysExLen; got != capacity {
		t.Fatalf("SysExLen = %d, want %d", got, capacity)
	}
	d.Feed(0xF7)

	if len(r.events) != 1 || len(r.events[0].data) != capacity {
		t.Fatalf("events = %+v, want one sysex of %d bytes", r.events, capacity)
	}
	if d.Dropped() != 10 {
		t.Errorf("Dropped() = %d, want 10", d.Dropped())
	}
}

func TestDefaultCapacity(t *testing.T) {
	if got := New(&recorder{}, 0).Capacity(); got != contracts.DefaultSysExCapacity {
		t.Errorf("Capacity() = %d, want %d", got, contracts.DefaultSysExCapacity)
	}
}

func TestStatusByteAbortsSysEx(t *testing.T) {
	r := &recorder{}
	d := New(r, 0)
	feed(d, 0xF0, 0x7E, 0x7F, 0x90, 60, 100, 0xF7)

	if len(r.events) != 1 {
		t.Fatalf("got %d events, want only the note: %+v", len(r.events), r.events)
	}
	if r.events[0].kind != "note" || r.events[0].a != 60 {
		t.Errorf("event = %+v, want note 60", r.events[0])
	}
	if d.Aborted() != 1 {
		t.Errorf("Aborted() = %d, want 1", d.Aborted())
	}
}

func TestRealtimeBytesAreTransparent(t *testing.T) {
	r := &recorder{}
	d := New(r, 0)
	feed(d, 0x90, 0xF8, 60, 0xFE, 100)
	feed(d, 0xF0, 0x01, 0xF8, 0x02, 0xF7)

	if len(r.events) != 2 {
		t.Fatalf("got %d events, want 2: %+v", len(r.events), r.events)
	}
	if r.events[0].kind != "note" || r.events[0].b != 100 {
		t.Errorf("note = %+v", r.events[0])
	}
	if !bytes.Equal(r.events[1].data, []byte{1, 2}) {
		t.Errorf("sysex = %v, want [1 2]", r.events[1].data)
	}
}

func TestMalformedInput(t *testing.T) {
	r := &recorder{}
	d := New(r, 0)

	feed(d, 0x90, 60, -1, 100)
	feed(d, 0xB0, 256, 7, 64)
	if len(r.events) != 0 {
		t.Fatalf("malformed sequences dispatched %+v", r.events)
	}

	// Stray end marker and system common bytes leave the decoder usable.
	feed(d, 0xF7, 0xF2, 0x90, 60, 100)
	if len(r.events) != 1 || r.events[0].kind != "note" {
		t.Errorf("events = %+v, want a single note", r.events)
	}
}

func TestReset(t *testing.T) {
	r := &recorder{}
	d := New(r, 0)
	feed(d, 0xF0, 1, 2)
	d.Reset()
	s := d.State()
	if s.InSysEx || s.SysExLen != 0 || s.Status != contracts.None {
		t.Errorf("Reset left state %+v", s)
	}
	d.Feed(0xF7)
	if len(r.events) != 0 {
		t.Errorf("end marker after Reset dispatched %+v", r.events)
	}
}

func BenchmarkFeedNote(b *testing.B) {
	d := New(&nopHandler{}, 0)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		d.Feed(0x90)
		d.Feed(60)
		d.Feed(100)
	}
}

type nopHandler struct{}

func (nopHandler) Note(int, int, int)          {}
func (nopHandler) PolyPressure(int, int, int)  {}
func (nopHandler) ControlChange(int, int, int) {}
func (nopHandler) ProgramChange(int, int)      {}
func (nopHandler) ChannelPressure(int, int)    {}
func (nopHandler) PitchBend(int, int)          {}
func (nopHandler) SystemExclusive([]byte)      {}
