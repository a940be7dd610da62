package melty

import "bytes"

type sysexKind int

const (
	sysexOther sysexKind = iota
	sysexReset
	sysexMasterVolume
)

const (
	universalNonRealtime = 0x7E
	universalRealtime    = 0x7F
	rolandID             = 0x41
	yamahaID             = 0x43
)

// Payloads are matched without the 0xF0/0xF7 markers. The device id byte
// is not checked.
var (
	gsReset = []byte{0x42, 0x12, 0x40, 0x00, 0x7F, 0x00, 0x41}
	xgReset = []byte{0x4C, 0x00, 0x00, 0x7E, 0x00}
)

// classify recognises the messages the engine reacts to. For master volume
// the second result is the level scaled to 0..1.
func classify(data []byte) (sysexKind, float32) {
	if len(data) < 4 {
		return sysexOther, 0
	}
	switch data[0] {
	case universalNonRealtime:
		// General MIDI 09: 01 GM on, 02 GM off, 03 GM2 on.
		if data[2] == 0x09 && data[3] >= 0x01 && data[3] <= 0x03 {
			return sysexReset, 0
		}
	case universalRealtime:
		// Device control 04 01: master volume, LSB then MSB.
		if len(data) >= 6 && data[2] == 0x04 && data[3] == 0x01 {
			v := int(data[4]&0x7F) | int(data[5]&0x7F)<<7
			return sysexMasterVolume, float32(v) / 0x3FFF
		}
	case rolandID:
		if bytes.Equal(data[2:], gsReset) {
			return sysexReset, 0
		}
	case yamahaID:
		if data[1]&0xF0 == 0x10 && bytes.Equal(data[2:], xgReset) {
			return sysexReset, 0
		}
	}
	return sysexOther, 0
}
