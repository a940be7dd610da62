//go:build !linux || !cgo
// +build !linux !cgo

package midilinux

import (
	"github.com/leandrodaf/midisynth/internal/midi"
	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// NewMIDIClient returns a client whose device operations fail with
// contracts.ErrBackendUnavailable.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	return midi.NewUnavailable(options, "ALSA (rtmidi)"), nil
}
