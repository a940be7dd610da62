//go:build windows
// +build windows

package midiwindows

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// HMIDIIN is a winmm input device handle.
type HMIDIIN windows.Handle

// Open flags
const (
	CALLBACK_FUNCTION = 0x00030000 // Indicates that the callback is a function
	MIDI_IO_STATUS    = 0x00000020 // MIDI input/output status
)

// Input callback messages
const (
	MIM_OPEN      = 0x3C1 // MIDI device opened
	MIM_CLOSE     = 0x3C2 // MIDI device closed
	MIM_DATA      = 0x3C3 // Short MIDI message received
	MIM_LONGDATA  = 0x3C4 // Sysex buffer filled or returned by midiInReset
	MIM_ERROR     = 0x3C5 // Invalid short message
	MIM_LONGERROR = 0x3C6 // Invalid sysex message
	MIM_MOREDATA  = 0x3CC // Short message received while the application lags
)

const maxErrorLength = 256

type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

// midiHdr mirrors MIDIHDR, the header of a sysex input buffer.
type midiHdr struct {
	data          *byte
	bufferLength  uint32
	bytesRecorded uint32
	user          uintptr
	flags         uint32
	next          *midiHdr
	reserved      uintptr
	offset        uint32
	reservedArray [8]uintptr
}

var (
	winmm                     = windows.NewLazySystemDLL("winmm.dll")
	procMidiInGetNumDevs      = winmm.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps      = winmm.NewProc("midiInGetDevCapsW")
	procMidiInGetErrorText    = winmm.NewProc("midiInGetErrorTextW")
	procMidiInOpen            = winmm.NewProc("midiInOpen")
	procMidiInStart           = winmm.NewProc("midiInStart")
	procMidiInStop            = winmm.NewProc("midiInStop")
	procMidiInReset           = winmm.NewProc("midiInReset")
	procMidiInClose           = winmm.NewProc("midiInClose")
	procMidiInPrepareHeader   = winmm.NewProc("midiInPrepareHeader")
	procMidiInUnprepareHeader = winmm.NewProc("midiInUnprepareHeader")
	procMidiInAddBuffer       = winmm.NewProc("midiInAddBuffer")
)

// mmError turns an MMRESULT into an error carrying the winmm description.
func mmError(op string, result uintptr) error {
	if result == 0 {
		return nil
	}
	var text [maxErrorLength]uint16
	r, _, _ := procMidiInGetErrorText.Call(result, uintptr(unsafe.Pointer(&text[0])), maxErrorLength)
	if r != 0 {
		return fmt.Errorf("%s: MMRESULT %d", op, result)
	}
	return fmt.Errorf("%s: %s", op, windows.UTF16ToString(text[:]))
}

func numDevices() int {
	r, _, _ := procMidiInGetNumDevs.Call()
	return int(uint32(r))
}

func deviceCaps(id int) (midiInCaps, error) {
	var caps midiInCaps
	r, _, _ := procMidiInGetDevCaps.Call(uintptr(id), uintptr(unsafe.Pointer(&caps)), unsafe.Sizeof(caps))
	return caps, mmError("midiInGetDevCaps", r)
}

func openInput(handle *HMIDIIN, id int, callback, instance uintptr) error {
	r, _, _ := procMidiInOpen.Call(
		uintptr(unsafe.Pointer(handle)),
		uintptr(id),
		callback,
		instance,
		CALLBACK_FUNCTION|MIDI_IO_STATUS,
	)
	return mmError("midiInOpen", r)
}

func startInput(h HMIDIIN) error {
	r, _, _ := procMidiInStart.Call(uintptr(h))
	return mmError("midiInStart", r)
}

func stopInput(h HMIDIIN) error {
	r, _, _ := procMidiInStop.Call(uintptr(h))
	return mmError("midiInStop", r)
}

// resetInput returns every queued sysex buffer through MIM_LONGDATA.
func resetInput(h HMIDIIN) error {
	r, _, _ := procMidiInReset.Call(uintptr(h))
	return mmError("midiInReset", r)
}

func closeInput(h HMIDIIN) error {
	r, _, _ := procMidiInClose.Call(uintptr(h))
	return mmError("midiInClose", r)
}

func prepareHeader(h HMIDIIN, hdr *midiHdr) error {
	r, _, _ := procMidiInPrepareHeader.Call(uintptr(h), uintptr(unsafe.Pointer(hdr)), unsafe.Sizeof(*hdr))
	return mmError("midiInPrepareHeader", r)
}

func unprepareHeader(h HMIDIIN, hdr *midiHdr) error {
	r, _, _ := procMidiInUnprepareHeader.Call(uintptr(h), uintptr(unsafe.Pointer(hdr)), unsafe.Sizeof(*hdr))
	return mmError("midiInUnprepareHeader", r)
}

func addBuffer(h HMIDIIN, hdr *midiHdr) error {
	r, _, _ := procMidiInAddBuffer.Call(uintptr(h), uintptr(unsafe.Pointer(hdr)), unsafe.Sizeof(*hdr))
	return mmError("midiInAddBuffer", r)
}
