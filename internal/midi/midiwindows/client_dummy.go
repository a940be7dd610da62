//go:build !windows
// +build !windows

package midiwindows

import (
	"github.com/leandrodaf/midisynth/internal/midi"
	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// NewMIDIClient returns a client whose device operations fail with
// contracts.ErrBackendUnavailable.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	return midi.NewUnavailable(options, "winmm"), nil
}
