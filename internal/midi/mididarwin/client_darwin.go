//go:build darwin
// +build darwin

package mididarwin

import (
	"errors"
	"fmt"
	"sync"

	"github.com/leandrodaf/midisynth/internal/midi"
	"github.com/leandrodaf/midisynth/sdk/contracts"
	"github.com/youpy/go-coremidi"
)

// Error definitions for CoreMIDI sources.
var (
	ErrNoMIDIDevices       = errors.New("no MIDI devices found")
	ErrInvalidMIDIDevice   = errors.New("invalid MIDI device")
	ErrMIDIConnectionError = errors.New("error connecting to MIDI device")
	ErrCreateInputPort     = errors.New("error creating input port")
)

type portConnection interface {
	Disconnect()
}

// ClientMid reads CoreMIDI sources. CoreMIDI delivers whole messages and
// sysex fragments; both are forwarded untouched, so the byte decoder sees
// the stream exactly as the device sent it.
type ClientMid struct {
	logger  contracts.Logger
	client  coremidi.Client
	capture *midi.Capture

	mu        sync.Mutex
	inputPort *coremidi.InputPort
	conn      portConnection
	stopOnce  sync.Once
}

// NewMIDIClient creates the CoreMIDI client named by options.CoreMIDIConfig.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	name := options.CoreMIDIConfig.ClientName
	client, err := coremidi.NewClient(name)
	if err != nil {
		return nil, fmt.Errorf("creating CoreMIDI client %q: %w", name, err)
	}
	options.Logger.Info("MIDI client created for macOS", options.Logger.Field().String("clientName", name))

	return &ClientMid{
		logger:  options.Logger,
		client:  client,
		capture: midi.NewCapture(options.Logger, options.MIDIEventFilter),
	}, nil
}

// ListDevices describes every CoreMIDI source.
func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI sources: %w", err)
	}
	if len(sources) == 0 {
		m.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, 0, len(sources))
	for _, source := range sources {
		entity := source.Entity()
		devices = append(devices, contracts.DeviceInfo{
			Name:         source.Name(),
			EntityName:   entity.Name(),
			Manufacturer: entity.Manufacturer(),
		})
	}
	return devices, nil
}

// SelectDevice connects to the source at index deviceID. The input port is
// created once and reused; a previous connection is dropped.
func (m *ClientMid) SelectDevice(deviceID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sources, err := coremidi.AllSources()
	if err != nil {
		return fmt.Errorf("error retrieving MIDI sources: %w", err)
	}
	if deviceID < 0 || deviceID >= len(sources) {
		m.logger.Error(ErrInvalidMIDIDevice.Error(), m.logger.Field().Int("deviceID", deviceID))
		return fmt.Errorf("%w: %d", ErrInvalidMIDIDevice, deviceID)
	}
	m.disconnect()

	if m.inputPort == nil {
		port, err := coremidi.NewInputPort(m.client, "midisynth input", m.handlePacket)
		if err != nil {
			m.logger.Error(ErrCreateInputPort.Error(), m.logger.Field().Error("error", err))
			return fmt.Errorf("%w: %v", ErrCreateInputPort, err)
		}
		m.inputPort = &port
	}

	source := sources[deviceID]
	conn, err := m.inputPort.Connect(source)
	if err != nil {
		m.logger.Error(ErrMIDIConnectionError.Error(),
			m.logger.Field().String("deviceName", source.Name()),
			m.logger.Field().Error("error", err))
		return fmt.Errorf("%w: %v", ErrMIDIConnectionError, err)
	}
	m.conn = conn
	m.logger.Info("MIDI device connected",
		m.logger.Field().Int("deviceID", deviceID),
		m.logger.Field().String("deviceName", source.Name()))
	return nil
}

// handlePacket runs on a CoreMIDI thread.
func (m *ClientMid) handlePacket(_ coremidi.Source, packet coremidi.Packet) {
	m.capture.Deliver(packet.Data)
}

// StartCapture begins forwarding packets to packetChannel.
func (m *ClientMid) StartCapture(packetChannel chan contracts.Packet) {
	if m.capture.Start(packetChannel) {
		m.logger.Info("MIDI capture started")
	}
}

// Stop disconnects the source and stops forwarding. Only the first call has
// an effect.
func (m *ClientMid) Stop() error {
	m.stopOnce.Do(func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		m.disconnect()
		if m.capture.Stop() {
			m.logger.Info("MIDI capture stopped")
		}
	})
	return nil
}

func (m *ClientMid) disconnect() {
	if m.conn != nil {
		m.conn.Disconnect()
		m.conn = nil
	}
}
