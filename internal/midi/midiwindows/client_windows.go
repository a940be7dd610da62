//go:build windows
// +build windows

package midiwindows

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/leandrodaf/midisynth/internal/midi"
	"github.com/leandrodaf/midisynth/sdk/contracts"
	"golang.org/x/sys/windows"
)

// sysExBuffers is the number of long buffers queued while capturing.
const sysExBuffers = 4

// ErrNoMIDIDevices is returned when winmm reports no input devices.
var ErrNoMIDIDevices = errors.New("no MIDI devices found")

// inputCallback is shared by every client; windows.NewCallback slots are
// never released.
var inputCallback = windows.NewCallback(midiInCallback)

// ClientMid reads a winmm input device. Short messages arrive through
// MIM_DATA; sysex blocks fill queued long buffers and arrive through
// MIM_LONGDATA.
type ClientMid struct {
	logger     contracts.Logger
	capture    *midi.Capture
	bufferSize int

	mu      sync.Mutex
	handle  HMIDIIN
	headers []*midiHdr
	buffers [][]byte
	closing atomic.Bool
}

// NewMIDIClient creates a MIDI client for Windows
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	options.Logger.Info("MIDI client created for Windows",
		options.Logger.Field().Int("sysexBuffer", options.SysExCapacity))

	return &ClientMid{
		logger:     options.Logger,
		capture:    midi.NewCapture(options.Logger, options.MIDIEventFilter),
		bufferSize: options.SysExCapacity,
	}, nil
}

// ListDevices lists the available MIDI devices
func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	n := numDevices()
	if n == 0 {
		m.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, n)
	for i := range n {
		caps, err := deviceCaps(i)
		if err != nil {
			m.logger.Warn("Failed to get MIDI device information",
				m.logger.Field().Int("deviceID", i),
				m.logger.Field().Error("error", err))
			continue
		}
		name := windows.UTF16ToString(caps.szPname[:])
		devices[i] = contracts.DeviceInfo{
			Name:         name,
			EntityName:   name,
			Manufacturer: fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid),
		}
	}
	return devices, nil
}

// SelectDevice opens the input device with the given index, closing any
// device opened before.
func (m *ClientMid) SelectDevice(deviceID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle != 0 {
		if err := m.close(); err != nil {
			return fmt.Errorf("failed to close previous MIDI device: %w", err)
		}
	}

	m.closing.Store(false)
	if err := openInput(&m.handle, deviceID, inputCallback, uintptr(unsafe.Pointer(m))); err != nil {
		m.handle = 0
		m.logger.Error("Failed to open MIDI device",
			m.logger.Field().Int("deviceID", deviceID),
			m.logger.Field().Error("error", err))
		return fmt.Errorf("failed to open MIDI device %d: %w", deviceID, err)
	}

	m.logger.Info("MIDI device connected", m.logger.Field().Int("deviceID", deviceID))
	return nil
}

// StartCapture queues the sysex buffers, starts the device and forwards
// packets to packetChannel.
func (m *ClientMid) StartCapture(packetChannel chan contracts.Packet) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle == 0 {
		m.logger.Error("Cannot start capture: No MIDI device selected")
		return
	}
	if !m.capture.Start(packetChannel) {
		return
	}

	if err := m.queueBuffers(); err != nil {
		// Short messages still work without long buffers.
		m.logger.Warn("Sysex input disabled", m.logger.Field().Error("error", err))
	}

	if err := startInput(m.handle); err != nil {
		m.capture.Stop()
		m.logger.Error("Failed to start MIDI capture", m.logger.Field().Error("error", err))
		return
	}
	m.logger.Info("MIDI capture started", m.logger.Field().Int("sysexBuffers", len(m.headers)))
}

func (m *ClientMid) queueBuffers() error {
	for range sysExBuffers {
		buf := make([]byte, m.bufferSize)
		hdr := &midiHdr{data: &buf[0], bufferLength: uint32(len(buf))}
		if err := prepareHeader(m.handle, hdr); err != nil {
			return err
		}
		m.headers = append(m.headers, hdr)
		m.buffers = append(m.buffers, buf)
		if err := addBuffer(m.handle, hdr); err != nil {
			return err
		}
	}
	return nil
}

// midiInCallback runs on a winmm thread.
func midiInCallback(hMidiIn uintptr, wMsg uint32, dwInstance uintptr, dwParam1 uintptr, dwParam2 uintptr) uintptr {
	m := (*ClientMid)(unsafe.Pointer(dwInstance))

	switch wMsg {
	case MIM_OPEN:
		m.logger.Debug("MIDI device opened")
	case MIM_CLOSE:
		m.logger.Debug("MIDI device closed")
	case MIM_DATA, MIM_MOREDATA:
		// Status in the low byte, then up to two data bytes.
		msg := [3]byte{byte(dwParam1), byte(dwParam1 >> 8), byte(dwParam1 >> 16)}
		if n := midi.MessageLength(msg[0]); n > 0 {
			m.capture.Deliver(msg[:n])
		}
	case MIM_LONGDATA:
		hdr := (*midiHdr)(unsafe.Pointer(dwParam1))
		if hdr.bytesRecorded > 0 {
			data := unsafe.Slice(hdr.data, hdr.bytesRecorded)
			m.capture.Deliver(data)
		}
		if !m.closing.Load() {
			hdr.bytesRecorded = 0
			if err := addBuffer(HMIDIIN(hMidiIn), hdr); err != nil {
				m.logger.Warn("Failed to requeue sysex buffer", m.logger.Field().Error("error", err))
			}
		}
	case MIM_ERROR, MIM_LONGERROR:
		m.logger.Warn("Invalid MIDI input", m.logger.Field().Uint64("message", uint64(wMsg)))
	}
	return 0
}

// Stop terminates MIDI capture and closes the device
func (m *ClientMid) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle == 0 {
		m.logger.Warn("No MIDI device is connected")
		return nil
	}
	if err := m.close(); err != nil {
		return fmt.Errorf("failed to stop MIDI capture: %w", err)
	}
	m.logger.Info("MIDI capture stopped and device closed")
	return nil
}

// close stops the device, takes back the sysex buffers and closes the handle.
func (m *ClientMid) close() error {
	m.closing.Store(true)
	m.capture.Stop()

	var errs []error
	if err := stopInput(m.handle); err != nil {
		errs = append(errs, err)
	}
	if err := resetInput(m.handle); err != nil {
		errs = append(errs, err)
	}
	for _, hdr := range m.headers {
		if err := unprepareHeader(m.handle, hdr); err != nil {
			errs = append(errs, err)
		}
	}
	m.headers, m.buffers = nil, nil

	if err := closeInput(m.handle); err != nil {
		errs = append(errs, err)
	}
	m.handle = 0
	if err := errors.Join(errs...); err != nil {
		m.logger.Error("Failed to release MIDI device", m.logger.Field().Error("error", err))
		return err
	}
	return nil
}
