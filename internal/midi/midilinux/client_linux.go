//go:build linux && cgo
// +build linux,cgo

package midilinux

import (
	"errors"
	"fmt"
	"sync"

	"github.com/leandrodaf/midisynth/internal/midi"
	"github.com/leandrodaf/midisynth/sdk/contracts"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// Error definitions for ALSA input handling.
var (
	ErrNoMIDIDevices     = errors.New("no MIDI devices found")
	ErrInvalidMIDIDevice = errors.New("invalid MIDI device")
	ErrNoDeviceSelected  = errors.New("no MIDI device selected")
)

// ClientMid reads ALSA sequencer input through rtmidi. gomidi hands over
// whole messages, sysex included, which are forwarded as raw packets.
type ClientMid struct {
	logger  contracts.Logger
	driver  *rtmididrv.Driver
	capture *midi.Capture

	mu       sync.Mutex
	in       drivers.In
	stop     func()
	stopOnce sync.Once
}

// NewMIDIClient opens the rtmidi driver.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("opening rtmidi driver: %w", err)
	}
	options.Logger.Info("MIDI client created for Linux")
	return &ClientMid{
		logger:  options.Logger,
		driver:  drv,
		capture: midi.NewCapture(options.Logger, options.MIDIEventFilter),
	}, nil
}

// ListDevices lists the ALSA input ports.
func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	ins, err := m.driver.Ins()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI inputs: %w", err)
	}
	if len(ins) == 0 {
		m.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}
	devices := make([]contracts.DeviceInfo, len(ins))
	for i, in := range ins {
		devices[i] = contracts.DeviceInfo{
			Name:         in.String(),
			EntityName:   in.String(),
			Manufacturer: m.driver.String(),
		}
	}
	return devices, nil
}

// SelectDevice opens the input port at index deviceID, closing any previous one.
func (m *ClientMid) SelectDevice(deviceID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ins, err := m.driver.Ins()
	if err != nil {
		return fmt.Errorf("error retrieving MIDI inputs: %w", err)
	}
	if deviceID < 0 || deviceID >= len(ins) {
		m.logger.Error(ErrInvalidMIDIDevice.Error(), m.logger.Field().Int("deviceID", deviceID))
		return fmt.Errorf("%w: %d", ErrInvalidMIDIDevice, deviceID)
	}
	// The listener belongs to the port; capture restarts with StartCapture.
	m.closeInput()
	m.capture.Stop()

	in := ins[deviceID]
	if err := in.Open(); err != nil {
		return fmt.Errorf("opening %s: %w", in.String(), err)
	}
	m.in = in
	m.logger.Info("MIDI device selected",
		m.logger.Field().Int("deviceID", deviceID),
		m.logger.Field().String("deviceName", in.String()))
	return nil
}

// StartCapture starts listening on the selected port.
func (m *ClientMid) StartCapture(packetChannel chan contracts.Packet) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.in == nil {
		m.logger.Error(ErrNoDeviceSelected.Error())
		return
	}
	if !m.capture.Start(packetChannel) {
		return
	}

	stop, err := gomidi.ListenTo(m.in, m.handleMessage,
		gomidi.UseSysEx(),
		gomidi.HandleError(func(err error) {
			m.logger.Warn("MIDI listener error", m.logger.Field().Error("error", err))
		}))
	if err != nil {
		m.capture.Stop()
		m.logger.Error("Failed to start MIDI capture", m.logger.Field().Error("error", err))
		return
	}
	m.stop = stop
	m.logger.Info("MIDI capture started")
}

// handleMessage runs on the rtmidi callback thread.
func (m *ClientMid) handleMessage(msg gomidi.Message, _ int32) {
	m.capture.Deliver(msg.Bytes())
}

// Stop ends capture, closes the port and the driver. Only the first call
// has an effect.
func (m *ClientMid) Stop() error {
	var err error
	m.stopOnce.Do(func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		m.closeInput()
		m.capture.Stop()
		if cerr := m.driver.Close(); cerr != nil {
			err = fmt.Errorf("closing rtmidi driver: %w", cerr)
		}
		m.logger.Info("MIDI capture stopped")
	})
	return err
}

func (m *ClientMid) closeInput() {
	if m.stop != nil {
		m.stop()
		m.stop = nil
	}
	if m.in != nil {
		if err := m.in.Close(); err != nil {
			m.logger.Warn("Failed to close MIDI input", m.logger.Field().Error("error", err))
		}
		m.in = nil
	}
}
