// Package synth assembles a SoundFont synthesizer instance: a raw MIDI byte
// decoder and a control surface in front of an event dispatcher, and an
// audio render hook, all driving one synthesis engine.
package synth

import (
	"errors"
	"fmt"

	"github.com/leandrodaf/midisynth/internal/control"
	"github.com/leandrodaf/midisynth/internal/decoder"
	"github.com/leandrodaf/midisynth/internal/dispatch"
	"github.com/leandrodaf/midisynth/internal/engine/melty"
	"github.com/leandrodaf/midisynth/internal/options"
	"github.com/leandrodaf/midisynth/internal/render"
	"github.com/leandrodaf/midisynth/internal/soundfont"
	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// Engine is everything the synth needs from a synthesis backend.
type Engine interface {
	contracts.Engine
	contracts.SoundFontLoader
}

// Stats are the counters of silently dropped input.
type Stats struct {
	SysExDropped      uint64 // Sysex bytes beyond the buffer capacity.
	SysExAborted      uint64 // Sysex blocks cut short by a status byte.
	Ignored           uint64 // Events dropped for out-of-range arguments.
	GeneratorsDropped uint64 // Raw parameters the engine cannot apply.
}

// generatorCounter is implemented by engines that drop some generators.
type generatorCounter interface {
	UnsupportedGenerators() uint64
}

// Synth is one synthesizer instance. It has two entry points, the event side
// (Float, Feed, the typed event methods, Send) and the audio side (Process).
// Neither blocks nor locks; callers that use both from different goroutines
// must serialize them, which is what Host does.
type Synth struct {
	logger      contracts.Logger
	engine      Engine // nil when the engine could not be created
	config      contracts.EngineConfig
	searchPaths []string

	dispatcher *dispatch.Dispatcher
	decoder    *decoder.Decoder
	bridge     *render.Bridge
	router     *control.Router
}

// New creates a synth backed by go-meltysynth. If the engine cannot be
// created the synth is still returned, with every operation a no-op, and the
// failure is logged. The soundfont given with contracts.WithSoundFont is
// loaded right away; a load failure is logged and does not fail New.
//
// opts ...contracts.Option: A variadic list of option functions to customize the synth.
//
// Returns:
//   - *Synth: The synth instance.
//   - error: An error if the options are invalid.
func New(opts ...contracts.Option) (*Synth, error) {
	o, err := options.Apply(opts...)
	if err != nil {
		return nil, err
	}
	cfg := contracts.EngineConfig{}
	if o.EngineConfig != nil {
		cfg = *o.EngineConfig
	}
	cfg = melty.WithDefaults(cfg)

	var engine Engine
	if e, err := melty.New(cfg); err != nil {
		o.Logger.Error("Failed to create synthesis engine", o.Logger.Field().Error("error", err))
	} else {
		engine = e
	}
	return build(engine, cfg, o), nil
}

// NewWithEngine creates a synth around an existing engine. A nil engine
// gives a synth whose every operation is a no-op.
func NewWithEngine(engine Engine, config contracts.EngineConfig, opts ...contracts.Option) (*Synth, error) {
	o, err := options.Apply(opts...)
	if err != nil {
		return nil, err
	}
	return build(engine, config, o), nil
}

func build(engine Engine, cfg contracts.EngineConfig, o contracts.ClientOptions) *Synth {
	s := &Synth{
		logger:      o.Logger,
		engine:      engine,
		config:      cfg,
		searchPaths: o.SearchPaths,
	}

	// The dispatcher and bridge must see an untyped nil when there is no engine.
	var target contracts.Engine
	if engine != nil {
		target = engine
	}
	s.dispatcher = dispatch.New(target, cfg.MIDIChannels)
	s.decoder = decoder.New(s.dispatcher, o.SysExCapacity)
	s.bridge = render.NewBridge(target)
	s.router = control.NewRouter(s.dispatcher, o.SysExCapacity, control.Handlers{
		Raw:  s.Float,
		Load: s.Load,
		Info: func() { s.Info() },
	})

	s.logger.Info("Synth created",
		s.logger.Field().Bool("engine", engine != nil),
		s.logger.Field().Int("sampleRate", cfg.SampleRate),
		s.logger.Field().Int("channels", cfg.MIDIChannels),
		s.logger.Field().Int("sysexCapacity", s.decoder.Capacity()))

	if o.SoundFont != "" {
		// Failure is already logged by Load.
		_ = s.Load(o.SoundFont)
	}
	return s
}

// Available reports whether a synthesis engine exists.
func (s *Synth) Available() bool {
	return s.engine != nil
}

// Ready reports whether the engine exists and has a soundfont.
func (s *Synth) Ready() bool {
	return s.engine != nil && s.engine.Ready()
}

// Config returns the engine settings in use.
func (s *Synth) Config() contracts.EngineConfig {
	return s.config
}

// Float feeds one raw MIDI byte to the stream decoder. Values outside
// 0..255 clear any half-received message.
func (s *Synth) Float(v int) {
	s.decoder.Feed(v)
}

// Feed feeds every byte of data to the stream decoder.
func (s *Synth) Feed(data []byte) {
	_, _ = s.decoder.Write(data)
}

// Note starts a note, or releases it when velocity is 0. Channels are 1-based.
func (s *Synth) Note(key, velocity, channel int) {
	s.dispatcher.Note(key, velocity, channel)
}

// ProgramChange selects a preset.
func (s *Synth) ProgramChange(program, channel int) {
	s.dispatcher.ProgramChange(program, channel)
}

// ControlChange sets a controller.
func (s *Synth) ControlChange(controller, value, channel int) {
	s.dispatcher.ControlChange(controller, value, channel)
}

// PitchBend sets the 14-bit bend, 8192 being the center.
func (s *Synth) PitchBend(value, channel int) {
	s.dispatcher.PitchBend(value, channel)
}

// ChannelPressure sets channel aftertouch.
func (s *Synth) ChannelPressure(value, channel int) {
	s.dispatcher.ChannelPressure(value, channel)
}

// PolyPressure sets key aftertouch.
func (s *Synth) PolyPressure(value, key, channel int) {
	s.dispatcher.PolyPressure(value, key, channel)
}

// BankSelect chooses the bank for the next program change.
func (s *Synth) BankSelect(bank, channel int) {
	s.dispatcher.BankSelect(bank, channel)
}

// RawParameter sets a SoundFont generator on a channel, unclamped.
func (s *Synth) RawParameter(channel, param int, value float32) {
	s.dispatcher.RawParameter(channel, param, value)
}

// SystemExclusive sends a sysex payload without the 0xF0/0xF7 markers.
func (s *Synth) SystemExclusive(data []byte) {
	s.dispatcher.SystemExclusive(data)
}

// Send routes a control message. Malformed and unknown messages are
// dropped and reported through the returned error and the debug log.
func (s *Synth) Send(msg control.Message) error {
	err := s.router.Route(msg)
	if err != nil && !errors.Is(err, contracts.ErrResourceLoad) && !errors.Is(err, contracts.ErrEngineUnavailable) {
		s.logger.Debug("Control message dropped",
			s.logger.Field().String("message", msg.String()),
			s.logger.Field().Error("error", err))
	}
	return err
}

// SendLine parses and routes a control message such as "note 60 100 1".
func (s *Synth) SendLine(line string) error {
	msg, err := control.Parse(line)
	if err != nil {
		return err
	}
	return s.Send(msg)
}

// Load resolves name against the search paths and loads it, resetting every
// channel's program on success. On failure the previous soundfont stays.
func (s *Synth) Load(name string) error {
	path, err := soundfont.Resolve(name, s.searchPaths)
	if err != nil {
		s.logger.Error("Failed to resolve soundfont",
			s.logger.Field().String("name", name),
			s.logger.Field().Error("error", err))
		return err
	}
	return s.LoadFile(path)
}

// LoadFile loads the soundfont at path without resolution.
func (s *Synth) LoadFile(path string) error {
	if s.engine == nil {
		s.logger.Error("Cannot load soundfont: no synthesis engine", s.logger.Field().String("path", path))
		return fmt.Errorf("%w: loading %s", contracts.ErrEngineUnavailable, path)
	}
	if err := s.engine.LoadSoundFont(path); err != nil {
		s.logger.Error("Failed to load soundfont",
			s.logger.Field().String("path", path),
			s.logger.Field().Error("error", err))
		return err
	}
	s.engine.ProgramReset()
	s.logger.Info("Soundfont loaded", s.logger.Field().String("path", path))
	return nil
}

// Info returns and logs the version of the synthesis engine.
func (s *Synth) Info() string {
	version := "no synthesis engine"
	if s.engine != nil {
		version = s.engine.Version()
	}
	s.logger.Info("Synthesis engine", s.logger.Field().String("version", version))
	return version
}

// Process renders frames planar stereo frames into left and right.
func (s *Synth) Process(frames int, left, right []float32) {
	s.bridge.Process(frames, left, right)
}

// State returns a snapshot of the byte decoder.
func (s *Synth) State() decoder.State {
	return s.decoder.State()
}

// Stats returns the dropped input counters.
func (s *Synth) Stats() Stats {
	stats := Stats{
		SysExDropped: s.decoder.Dropped(),
		SysExAborted: s.decoder.Aborted(),
		Ignored:      s.dispatcher.Ignored(),
	}
	if c, ok := s.engine.(generatorCounter); ok {
		stats.GeneratorsDropped = c.UnsupportedGenerators()
	}
	return stats
}

// Close releases every sounding voice and returns the decoder to idle.
// The synth must not be used afterwards.
func (s *Synth) Close() error {
	s.decoder.Reset()
	if s.engine != nil {
		s.engine.ProgramReset()
	}
	stats := s.Stats()
	s.logger.Info("Synth closed",
		s.logger.Field().Uint64("sysexDropped", stats.SysExDropped),
		s.logger.Field().Uint64("sysexAborted", stats.SysExAborted),
		s.logger.Field().Uint64("ignored", stats.Ignored),
		s.logger.Field().Uint64("generatorsDropped", stats.GeneratorsDropped))
	return nil
}
