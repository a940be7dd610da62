package midi

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/leandrodaf/midisynth/internal/logger"
	"github.com/leandrodaf/midisynth/sdk/contracts"
)

func TestMessageLength(t *testing.T) {
	tests := []struct {
		status byte
		want   int
	}{
		{0x40, 0},
		{0x80, 3},
		{0x9F, 3},
		{0xA0, 3},
		{0xB3, 3},
		{0xC0, 2},
		{0xD5, 2},
		{0xE0, 3},
		{0xF0, 0},
		{0xF1, 2},
		{0xF2, 3},
		{0xF3, 2},
		{0xF4, 0},
		{0xF7, 0},
		{0xF8, 1},
		{0xFE, 1},
	}
	for _, tt := range tests {
		if got := MessageLength(tt.status); got != tt.want {
			t.Errorf("MessageLength(%#x) = %d, want %d", tt.status, got, tt.want)
		}
	}
}

func TestDeliver(t *testing.T) {
	log := logger.NewNopLogger()
	ch := make(chan contracts.Packet, 1)
	data := []byte{0x90, 60, 100}

	if !Deliver(ch, data, nil, log) {
		t.Fatal("Deliver() = false with room in the channel")
	}
	data[1] = 0 // the packet must own its bytes
	p := <-ch
	if !bytes.Equal(p.Data, []byte{0x90, 60, 100}) || p.Timestamp == 0 {
		t.Errorf("packet = %+v", p)
	}

	filter := &contracts.MIDIEventFilter{Commands: []contracts.MIDICommand{contracts.ControlChange}}
	if Deliver(ch, []byte{0x90, 60, 100}, filter, log) {
		t.Error("note on passed a control change filter")
	}
	if !Deliver(ch, []byte{0xF0, 0x7E, 0xF7}, filter, log) {
		t.Error("sysex was filtered")
	}
	if Deliver(ch, []byte{0xB0, 7, 1}, filter, log) {
		t.Error("Deliver() = true on a full channel")
	}
	if Deliver(nil, data, nil, log) || Deliver(ch, nil, nil, log) {
		t.Error("Deliver() accepted a nil channel or empty data")
	}
}

func TestUnavailable(t *testing.T) {
	u := NewUnavailable(&contracts.ClientOptions{Logger: logger.NewNopLogger()}, "winmm")
	if _, err := u.ListDevices(); !errors.Is(err, contracts.ErrBackendUnavailable) {
		t.Errorf("ListDevices() error = %v", err)
	}
	if err := u.SelectDevice(0); !errors.Is(err, contracts.ErrBackendUnavailable) {
		t.Errorf("SelectDevice() error = %v", err)
	}
	u.StartCapture(make(chan contracts.Packet))
	if err := u.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestCapture(t *testing.T) {
	c := NewCapture(logger.NewNopLogger(), nil)
	if c.Deliver([]byte{0x90, 60, 1}) || c.Active() {
		t.Fatal("idle capture delivered")
	}
	if c.Start(nil) {
		t.Error("Start(nil) = true")
	}

	ch := make(chan contracts.Packet, 4)
	if !c.Start(ch) || c.Start(make(chan contracts.Packet)) {
		t.Fatal("Start() did not keep the first channel")
	}

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Deliver([]byte{0xF8})
		}()
	}
	wg.Wait()
	if len(ch) != 4 {
		t.Errorf("delivered %d packets, want 4", len(ch))
	}

	if !c.Stop() || c.Stop() {
		t.Error("Stop() did not report the running capture once")
	}
	if c.Deliver([]byte{0xF8}) || len(ch) != 4 {
		t.Error("delivered after Stop")
	}
}
