// Package melty adapts the pure Go go-meltysynth SoundFont synthesizer to
// the engine contracts.
package melty

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"runtime/debug"

	"github.com/leandrodaf/midisynth/sdk/contracts"
	"github.com/sinshu/go-meltysynth/meltysynth"
)

const (
	modulePath = "github.com/sinshu/go-meltysynth"

	// meltysynth exposes a fixed set of 16 channels.
	maxChannels = 16

	minSampleRate = 16000
	maxSampleRate = 192000

	// SoundFont generators with a channel-level equivalent.
	genCoarseTune = 51
	genFineTune   = 52

	rpnFineTune   = 1
	rpnCoarseTune = 2
)

// DefaultConfig returns the engine settings used when none are given.
func DefaultConfig() contracts.EngineConfig {
	return contracts.EngineConfig{
		SampleRate:   44100,
		BlockSize:    64,
		Polyphony:    256,
		MIDIChannels: maxChannels,
		Gain:         0.6,
		Effects:      false,
	}
}

// WithDefaults fills the zero fields of cfg from DefaultConfig.
func WithDefaults(cfg contracts.EngineConfig) contracts.EngineConfig {
	def := DefaultConfig()
	if cfg.SampleRate == 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.BlockSize == 0 {
		cfg.BlockSize = def.BlockSize
	}
	if cfg.Polyphony == 0 {
		cfg.Polyphony = def.Polyphony
	}
	if cfg.MIDIChannels == 0 || cfg.MIDIChannels > maxChannels {
		cfg.MIDIChannels = def.MIDIChannels
	}
	if cfg.Gain == 0 {
		cfg.Gain = def.Gain
	}
	return cfg
}

// Engine implements contracts.Engine and contracts.SoundFontLoader. It has
// no sound until a soundfont is loaded; until then every event is dropped
// and Render produces silence. It is not safe for concurrent use.
type Engine struct {
	cfg    contracts.EngineConfig
	synth  *meltysynth.Synthesizer
	path   string
	master float32 // universal master volume, 0..1
	gain   float32 // cfg.Gain * master

	unsupported uint64
}

// New validates cfg and creates an engine without a soundfont.
func New(cfg contracts.EngineConfig) (*Engine, error) {
	cfg = WithDefaults(cfg)
	if cfg.SampleRate < minSampleRate || cfg.SampleRate > maxSampleRate {
		return nil, fmt.Errorf("%w: sample rate %d outside %d..%d",
			contracts.ErrEngineUnavailable, cfg.SampleRate, minSampleRate, maxSampleRate)
	}
	if cfg.BlockSize < 8 || cfg.BlockSize > 1024 {
		return nil, fmt.Errorf("%w: block size %d outside 8..1024", contracts.ErrEngineUnavailable, cfg.BlockSize)
	}
	if cfg.Polyphony < 8 || cfg.Polyphony > 256 {
		return nil, fmt.Errorf("%w: polyphony %d outside 8..256", contracts.ErrEngineUnavailable, cfg.Polyphony)
	}
	if cfg.Gain < 0 {
		return nil, fmt.Errorf("%w: negative gain %g", contracts.ErrEngineUnavailable, cfg.Gain)
	}
	e := &Engine{cfg: cfg, master: 1}
	e.updateGain()
	return e, nil
}

// Config returns the effective settings.
func (e *Engine) Config() contracts.EngineConfig {
	return e.cfg
}

// SoundFont returns the path of the loaded soundfont, empty before the first load.
func (e *Engine) SoundFont() string {
	return e.path
}

// LoadSoundFont parses the file at path and replaces the synthesizer. On
// failure the previous synthesizer, if any, stays in place.
func (e *Engine) LoadSoundFont(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", contracts.ErrResourceLoad, err)
	}
	defer f.Close()

	sf, err := meltysynth.NewSoundFont(bufio.NewReader(f))
	if err != nil {
		return fmt.Errorf("%w: parsing %s: %v", contracts.ErrResourceLoad, path, err)
	}

	settings := meltysynth.NewSynthesizerSettings(int32(e.cfg.SampleRate))
	settings.BlockSize = int32(e.cfg.BlockSize)
	settings.MaximumPolyphony = int32(e.cfg.Polyphony)
	settings.EnableReverbAndChorus = e.cfg.Effects

	synth, err := meltysynth.NewSynthesizer(sf, settings)
	if err != nil {
		return fmt.Errorf("%w: creating synthesizer for %s: %v", contracts.ErrResourceLoad, path, err)
	}
	e.synth = synth
	e.path = path
	e.updateGain()
	return nil
}

// ProgramReset silences all voices and returns every channel to its
// default bank and program.
func (e *Engine) ProgramReset() {
	if e.synth == nil {
		return
	}
	e.synth.Reset()
}

// Ready reports whether a soundfont is loaded.
func (e *Engine) Ready() bool {
	return e.synth != nil
}

// Version reports the meltysynth module version linked into the binary.
func (e *Engine) Version() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, dep := range info.Deps {
			if dep.Path == modulePath {
				return "go-meltysynth " + dep.Version
			}
		}
	}
	return "go-meltysynth (devel)"
}

func (e *Engine) usable(channel int) bool {
	return e.synth != nil && channel >= 0 && channel < e.cfg.MIDIChannels
}

func (e *Engine) message(channel, command, data1, data2 int) {
	e.synth.ProcessMidiMessage(int32(channel), int32(command), int32(data1), int32(data2))
}

// NoteOn starts a note. Velocity 0 releases it.
func (e *Engine) NoteOn(channel, key, velocity int) {
	if !e.usable(channel) {
		return
	}
	if velocity == 0 {
		e.synth.NoteOff(int32(channel), int32(key))
		return
	}
	e.synth.NoteOn(int32(channel), int32(key), int32(velocity))
}

func (e *Engine) ControlChange(channel, controller, value int) {
	if e.usable(channel) {
		e.message(channel, int(contracts.ControlChange), controller, value)
	}
}

func (e *Engine) ProgramChange(channel, program int) {
	if e.usable(channel) {
		e.message(channel, int(contracts.ProgramChange), program, 0)
	}
}

// PitchBend takes the 14-bit value and sends it as LSB, MSB.
func (e *Engine) PitchBend(channel, value int) {
	if e.usable(channel) {
		e.message(channel, int(contracts.PitchBend), value&0x7F, (value>>7)&0x7F)
	}
}

// ChannelPressure is forwarded as is; meltysynth currently ignores it.
func (e *Engine) ChannelPressure(channel, value int) {
	if e.usable(channel) {
		e.message(channel, int(contracts.ChannelPressure), value, 0)
	}
}

// KeyPressure is forwarded as is; meltysynth currently ignores it.
func (e *Engine) KeyPressure(channel, key, value int) {
	if e.usable(channel) {
		e.message(channel, int(contracts.PolyPressure), key, value)
	}
}

// BankSelect passes the full bank number through controller 0, which
// meltysynth stores without masking.
func (e *Engine) BankSelect(channel, bank int) {
	if e.usable(channel) {
		e.message(channel, int(contracts.ControlChange), 0x00, bank)
	}
}

// SetGenerator applies the tuning generators through the channel's
// registered parameters: coarseTune (51) in semitones and fineTune (52) in
// cents. Values are clamped to what the parameters can carry. Every other
// generator is dropped and counted.
func (e *Engine) SetGenerator(channel, param int, value float32) {
	switch param {
	case genCoarseTune:
		if e.usable(channel) {
			e.setRPN(channel, rpnCoarseTune, 64+int(min(max(value, -64), 63)), 0)
		}
	case genFineTune:
		if e.usable(channel) {
			cents := math.Round(float64(min(max(value, -100), 100)) * 0x2000 / 100)
			v := min(0x2000+int(cents), 0x3FFF)
			e.setRPN(channel, rpnFineTune, v>>7, v&0x7F)
		}
	default:
		e.unsupported++
	}
}

// UnsupportedGenerators returns how many SetGenerator calls named a
// generator the engine cannot apply.
func (e *Engine) UnsupportedGenerators() uint64 {
	return e.unsupported
}

// setRPN writes a registered parameter with data entry and deselects it
// again so later data entry messages do not change it.
func (e *Engine) setRPN(channel, rpn, msb, lsb int) {
	cc := int(contracts.ControlChange)
	e.message(channel, cc, 0x65, 0)
	e.message(channel, cc, 0x64, rpn)
	e.message(channel, cc, 0x06, msb)
	e.message(channel, cc, 0x26, lsb)
	e.message(channel, cc, 0x65, 0x7F)
	e.message(channel, cc, 0x64, 0x7F)
}

// SysEx handles the system resets and the universal master volume.
// Anything else is ignored and no reply is ever produced.
func (e *Engine) SysEx(data []byte) {
	if e.synth == nil {
		return
	}
	switch kind, volume := classify(data); kind {
	case sysexReset:
		e.synth.Reset()
		e.master = 1
		e.updateGain()
	case sysexMasterVolume:
		e.master = volume
		e.updateGain()
	}
}

// Render fills left and right with the next frames.
func (e *Engine) Render(left, right []float32) {
	if e.synth == nil {
		clear(left)
		clear(right)
		return
	}
	e.synth.Render(left, right)
}

// updateGain moves the configured gain and the master volume into the
// synthesizer's own master volume.
func (e *Engine) updateGain() {
	e.gain = float32(e.cfg.Gain) * e.master
	if e.synth != nil {
		e.synth.MasterVolume = e.gain
	}
}
