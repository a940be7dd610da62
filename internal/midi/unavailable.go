package midi

import (
	"fmt"

	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// Unavailable is the client returned by a platform backend compiled for a
// system it cannot serve. Device operations fail with ErrBackendUnavailable.
type Unavailable struct {
	logger  contracts.Logger
	backend string
}

// NewUnavailable returns a placeholder client for backend.
func NewUnavailable(options *contracts.ClientOptions, backend string) *Unavailable {
	options.Logger.Info("MIDI input backend not available on this platform",
		options.Logger.Field().String("backend", backend))
	return &Unavailable{logger: options.Logger, backend: backend}
}

func (u *Unavailable) err() error {
	return fmt.Errorf("%w: %s", contracts.ErrBackendUnavailable, u.backend)
}

func (u *Unavailable) ListDevices() ([]contracts.DeviceInfo, error) {
	u.logger.Warn("ListDevices called on unavailable MIDI backend", u.logger.Field().String("backend", u.backend))
	return nil, u.err()
}

func (u *Unavailable) SelectDevice(deviceID int) error {
	u.logger.Warn("SelectDevice called on unavailable MIDI backend", u.logger.Field().String("backend", u.backend))
	return u.err()
}

func (u *Unavailable) StartCapture(packetChannel chan contracts.Packet) {
	u.logger.Warn("StartCapture called on unavailable MIDI backend", u.logger.Field().String("backend", u.backend))
}

func (u *Unavailable) Stop() error {
	return nil
}
