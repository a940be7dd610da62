package contracts

import "errors"

// Error kinds shared by the synth instance, the control surface and the engine adapter.
// None of them is ever returned from the byte decoding or rendering entry points.
var (
	// ErrEngineUnavailable means the synthesis engine was never constructed or has no soundfont.
	ErrEngineUnavailable  = errors.New("synthesis engine unavailable")
	// ErrMalformedInput covers wrong arity and out-of-range arguments.
	ErrMalformedInput     = errors.New("malformed input")
	// ErrUnknownSelector is returned for control messages nobody handles.
	ErrUnknownSelector    = errors.New("unknown control selector")
	// ErrResourceLoad means a soundfont could not be found or loaded.
	ErrResourceLoad       = errors.New("resource load failure")
	// ErrCapacityExceeded is returned for a sysex capacity above the supported maximum.
	ErrCapacityExceeded   = errors.New("sysex capacity exceeded")
	// ErrBackendUnavailable is returned by device operations on a platform
	// whose MIDI input backend was not compiled in.
	ErrBackendUnavailable = errors.New("MIDI input backend unavailable")
)
