// Package options applies the functional options shared by the device
// client and the synth, filling in defaults.
package options

import (
	"fmt"

	"github.com/leandrodaf/midisynth/internal/logger"
	"github.com/leandrodaf/midisynth/sdk/contracts"
)

const (
	// DefaultClientName is the CoreMIDI client name used when none is configured.
	DefaultClientName = "midisynth"
	// MaxSysExCapacity bounds the sysex buffers allocated per decoder and device.
	MaxSysExCapacity = 1 << 20
)

// Apply sets default values for ClientOptions if not explicitly provided.
//
// opts ...contracts.Option: A variadic list of option functions that can modify ClientOptions.
//
// Returns:
//   - contracts.ClientOptions: A structure containing the finalized options with defaults applied.
//   - error: An error if an option holds an invalid value.
func Apply(opts ...contracts.Option) (contracts.ClientOptions, error) {
	options := &contracts.ClientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.SysExCapacity < 0 {
		return contracts.ClientOptions{}, fmt.Errorf("%w: negative sysex capacity %d",
			contracts.ErrMalformedInput, options.SysExCapacity)
	}
	if options.SysExCapacity > MaxSysExCapacity {
		return contracts.ClientOptions{}, fmt.Errorf("%w: sysex capacity %d above %d",
			contracts.ErrCapacityExceeded, options.SysExCapacity, MaxSysExCapacity)
	}

	// Set defaults if options are not provided
	switch {
	case options.Logger == nil:
		options.Logger = logger.NewZapLogger() // Default to a production JSON logger
		if options.LogFilePath != "" {
			options.Logger.SetDestination(contracts.FileLog, options.LogFilePath)
		}
		options.Logger.SetLevel(options.LogLevel) // InfoLevel unless set
	case options.LogLevelSet():
		// A supplied logger keeps its own level unless one is asked for.
		options.Logger.SetLevel(options.LogLevel)
	}

	if options.CoreMIDIConfig == nil {
		options.CoreMIDIConfig = &contracts.CoreMIDIConfig{ClientName: DefaultClientName} // Default CoreMIDI config
	}
	if options.SysExCapacity == 0 {
		options.SysExCapacity = contracts.DefaultSysExCapacity
	}

	return *options, nil
}
