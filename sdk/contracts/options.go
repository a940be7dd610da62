package contracts

// MIDICommand represents the types of MIDI commands for event filtering.
type MIDICommand byte

const (
	// NoteOff is the MIDI command for a Note Off event (0x80).
	NoteOff MIDICommand = 0x80
	// NoteOn is the MIDI command for a Note On event (0x90).
	NoteOn MIDICommand = 0x90
	// PolyPressure is the MIDI command for polyphonic key pressure (0xA0).
	PolyPressure MIDICommand = 0xA0
	// ControlChange is the MIDI command for a controller change (0xB0).
	ControlChange MIDICommand = 0xB0
	// ProgramChange is the MIDI command for a program change (0xC0).
	ProgramChange MIDICommand = 0xC0
	// ChannelPressure is the MIDI command for channel pressure (0xD0).
	ChannelPressure MIDICommand = 0xD0
	// PitchBend is the MIDI command for a pitch bend change (0xE0).
	PitchBend MIDICommand = 0xE0
)

// DefaultSysExCapacity is the number of payload bytes kept per sysex block,
// excluding the 0xF0 and 0xF7 markers.
const DefaultSysExCapacity = 1024

// MIDIEventFilter allows users to specify which MIDI commands to capture.
type MIDIEventFilter struct {
	Commands []MIDICommand // List of MIDI commands to filter.
}

// Allows reports whether a packet starting with status passes the filter.
// System bytes and sysex continuations always pass so that blocks are never
// cut in half by the filter.
func (f *MIDIEventFilter) Allows(status byte) bool {
	if f == nil || status < 0x80 || status >= 0xF0 {
		return true
	}
	for _, c := range f.Commands {
		if status&0xF0 == byte(c) {
			return true
		}
	}
	return false
}

// CoreMIDIConfig holds configuration for CoreMIDI.
type CoreMIDIConfig struct {
	ClientName string // Name of the MIDI client.
}

// EngineConfig holds the initialization-time settings of the synthesis engine.
type EngineConfig struct {
	SampleRate   int     // Output sample rate in Hz.
	BlockSize    int     // Internal engine block size in frames.
	Polyphony    int     // Maximum number of simultaneous voices.
	MIDIChannels int     // Number of addressable channels (1-based range 1..MIDIChannels).
	Gain         float64 // Output gain applied to every rendered sample.
	Effects      bool    // Enables reverb and chorus.
}

// ClientOptions defines the configuration options for the synth and the MIDI client.
type ClientOptions struct {
	Logger          Logger           // Logger for logging events and errors.
	LogLevel        LogLevel         // Level of logging to use.
	LogFilePath     string           // File path for logging if file logging is enabled.
	MIDIEventFilter *MIDIEventFilter // Optional filter for MIDI events to capture.
	CoreMIDIConfig  *CoreMIDIConfig  // Configuration specific to CoreMIDI.
	EngineConfig    *EngineConfig    // Synthesis engine settings.
	SysExCapacity   int              // Sysex accumulation capacity in bytes.
	SearchPaths     []string         // Directories searched when resolving soundfonts.
	SoundFont       string           // Soundfont loaded at construction, optional.

	logLevelSet bool
}

// LogLevelSet reports whether WithLogLevel was given.
func (o ClientOptions) LogLevelSet() bool {
	return o.logLevelSet
}

// Option is a function that modifies ClientOptions.
type Option func(*ClientOptions)

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(opts *ClientOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level.
func WithLogLevel(level LogLevel) Option {
	return func(opts *ClientOptions) {
		opts.LogLevel = level
		opts.logLevelSet = true
	}
}

// WithLogFile directs the default logger to a file.
func WithLogFile(path string) Option {
	return func(opts *ClientOptions) {
		opts.LogFilePath = path
	}
}

// WithMIDIEventFilter sets the MIDI event filter for the MIDI client.
func WithMIDIEventFilter(filter MIDIEventFilter) Option {
	return func(opts *ClientOptions) {
		opts.MIDIEventFilter = &filter
	}
}

// WithCoreMIDIConfig sets the CoreMIDI configuration for the MIDI client.
func WithCoreMIDIConfig(config CoreMIDIConfig) Option {
	return func(opts *ClientOptions) {
		opts.CoreMIDIConfig = &config
	}
}

// WithEngineConfig sets the synthesis engine configuration. Zero fields take defaults.
func WithEngineConfig(config EngineConfig) Option {
	return func(opts *ClientOptions) {
		opts.EngineConfig = &config
	}
}

// WithSysExCapacity sets the sysex accumulation capacity.
func WithSysExCapacity(n int) Option {
	return func(opts *ClientOptions) {
		opts.SysExCapacity = n
	}
}

// WithSearchPaths sets the directories used to resolve soundfont names.
func WithSearchPaths(dirs ...string) Option {
	return func(opts *ClientOptions) {
		opts.SearchPaths = append(opts.SearchPaths, dirs...)
	}
}

// WithSoundFont loads the named soundfont when the synth is created.
func WithSoundFont(name string) Option {
	return func(opts *ClientOptions) {
		opts.SoundFont = name
	}
}
