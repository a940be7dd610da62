package contracts

// Engine is the real-time half of the synthesis engine adapter. Channels are
// 0-based. Implementations must not block or allocate on these calls.
type Engine interface {
	NoteOn(channel, key, velocity int)
	ControlChange(channel, controller, value int)
	ProgramChange(channel, program int)
	PitchBend(channel, value int)
	ChannelPressure(channel, value int)
	KeyPressure(channel, key, value int)
	BankSelect(channel, bank int)
	SetGenerator(channel, param int, value float32)
	// SysEx receives the payload between 0xF0 and 0xF7. The slice is only
	// valid for the duration of the call.
	SysEx(data []byte)
	// Render fills len(left) planar frames. left and right have equal length.
	Render(left, right []float32)
}

// SoundFontLoader is the non-real-time half of the engine adapter.
type SoundFontLoader interface {
	LoadSoundFont(path string) error
	ProgramReset()
	Ready() bool
	Version() string
}
