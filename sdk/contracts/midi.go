package contracts

// StatusType is the high nibble of a channel voice status byte.
type StatusType byte

const (
	// None means no channel status is pending.
	None StatusType = 0x0
	// NoteOffStatus is the status kind 0x8n.
	NoteOffStatus StatusType = 0x8
	// NoteOnStatus is the status kind 0x9n.
	NoteOnStatus StatusType = 0x9
	// PolyPressureStatus is the status kind 0xAn (polyphonic key pressure).
	PolyPressureStatus StatusType = 0xA
	// ControlChangeStatus is the status kind 0xBn.
	ControlChangeStatus StatusType = 0xB
	// ProgramChangeStatus is the status kind 0xCn.
	ProgramChangeStatus StatusType = 0xC
	// ChannelPressureStatus is the status kind 0xDn (monophonic aftertouch).
	ChannelPressureStatus StatusType = 0xD
	// PitchBendStatus is the status kind 0xEn.
	PitchBendStatus StatusType = 0xE
)

// StatusTypeOf returns the kind of a channel voice status byte, or None for
// data bytes and system messages.
func StatusTypeOf(status byte) StatusType {
	if status < 0x80 || status >= 0xF0 {
		return None
	}
	return StatusType(status >> 4)
}

// DataBytes is the number of data bytes a message of this kind carries.
func (s StatusType) DataBytes() int {
	switch s {
	case ProgramChangeStatus, ChannelPressureStatus:
		return 1
	case NoteOffStatus, NoteOnStatus, PolyPressureStatus, ControlChangeStatus, PitchBendStatus:
		return 2
	}
	return 0
}

func (s StatusType) String() string {
	switch s {
	case None:
		return "none"
	case NoteOffStatus:
		return "note-off"
	case NoteOnStatus:
		return "note-on"
	case PolyPressureStatus:
		return "poly-pressure"
	case ControlChangeStatus:
		return "control-change"
	case ProgramChangeStatus:
		return "program-change"
	case ChannelPressureStatus:
		return "channel-pressure"
	case PitchBendStatus:
		return "pitch-bend"
	}
	return "invalid"
}

// Packet is a chunk of raw MIDI bytes delivered by an input device.
// A packet may hold several messages or a fragment of a sysex block.
type Packet struct {
	Timestamp uint64 // Timestamp indicates the time the packet was received (ns, UTC).
	Data      []byte // Data holds the raw bytes in arrival order.
}

// ClientMIDI defines an interface for MIDI input device operations.
type ClientMIDI interface {
	// Stop stops the MIDI client and releases resources.
	Stop() error
	// ListDevices lists all available MIDI input devices.
	ListDevices() ([]DeviceInfo, error)
	// SelectDevice selects a MIDI device by its ID for communication.
	SelectDevice(deviceID int) error
	// StartCapture starts capturing raw packets and sends them to the channel.
	StartCapture(packetChannel chan Packet)
}
