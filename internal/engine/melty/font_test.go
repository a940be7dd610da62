package melty

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

const (
	testRate   = 44100
	testPeriod = 100 // frames per cycle at the root key, 441 Hz
	testRoot   = 60
)

// writeTestFont writes a SoundFont with one looped sine sample and two
// presets: bank 0 program 0 plays it at pitch, bank 1 program 0 plays it
// an octave up.
func writeTestFont(t *testing.T, dir string) string {
	t.Helper()

	samples := make([]int16, 2*testPeriod+46)
	for i := range 2 * testPeriod {
		samples[i] = int16(16000 * math.Sin(2*math.Pi*float64(i)/testPeriod))
	}

	var igen []byte
	for _, tune := range []int16{0, 12} {
		igen = append(igen, le(
			uint16(51), tune,      // coarseTune
			uint16(54), uint16(1), // sampleModes: loop
			uint16(53), uint16(0), // sampleID
		)...)
	}
	igen = append(igen, le(uint16(0), uint16(0))...)

	font := chunk("RIFF", []byte("sfbk"),
		list("INFO",
			chunk("ifil", le(uint16(2), uint16(1))),
			chunk("INAM", []byte("test\x00\x00")),
		),
		list("sdta", chunk("smpl", le(samples))),
		list("pdta",
			chunk("phdr",
				name("sine"), le(uint16(0), uint16(0), uint16(0), uint32(0), uint32(0), uint32(0)),
				name("sine up"), le(uint16(0), uint16(1), uint16(1), uint32(0), uint32(0), uint32(0)),
				name("EOP"), le(uint16(0), uint16(0), uint16(2), uint32(0), uint32(0), uint32(0)),
			),
			chunk("pbag", le(uint16(0), uint16(0), uint16(1), uint16(0), uint16(2), uint16(0))),
			chunk("pmod", make([]byte, 10)),
			chunk("pgen", le(uint16(41), uint16(0), uint16(41), uint16(1), uint16(0), uint16(0))),
			chunk("inst",
				name("sine"), le(uint16(0)),
				name("sine up"), le(uint16(1)),
				name("EOI"), le(uint16(2)),
			),
			chunk("ibag", le(uint16(0), uint16(0), uint16(3), uint16(0), uint16(6), uint16(0))),
			chunk("imod", make([]byte, 10)),
			chunk("igen", igen),
			chunk("shdr",
				name("sine"), le(
					uint32(0), uint32(2*testPeriod), // start, end
					uint32(0), uint32(2*testPeriod), // loop
					uint32(testRate), uint8(testRoot), int8(0), uint16(0), uint16(1),
				),
				make([]byte, 46),
			),
		),
	)

	path := filepath.Join(dir, "sine.sf2")
	if err := os.WriteFile(path, font, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func chunk(id string, data ...[]byte) []byte {
	body := bytes.Join(data, nil)
	out := make([]byte, 8, 8+len(body))
	copy(out, id)
	binary.LittleEndian.PutUint32(out[4:], uint32(len(body)))
	return append(out, body...)
}

func list(kind string, chunks ...[]byte) []byte {
	return chunk("LIST", append([][]byte{[]byte(kind)}, chunks...)...)
}

func le(values ...any) []byte {
	var b bytes.Buffer
	for _, v := range values {
		_ = binary.Write(&b, binary.LittleEndian, v)
	}
	return b.Bytes()
}

func name(s string) []byte {
	b := make([]byte, 20)
	copy(b, s)
	return b
}

// render returns the left channel of the next frames.
func render(e *Engine, frames int) []float32 {
	left := make([]float32, frames)
	right := make([]float32, frames)
	e.Render(left, right)
	return left
}

func peak(x []float32) float32 {
	var p float32
	for _, v := range x {
		p = max(p, float32(math.Abs(float64(v))))
	}
	return p
}

func crossings(x []float32) int {
	n := 0
	for i := 1; i < len(x); i++ {
		if (x[i-1] < 0) != (x[i] < 0) {
			n++
		}
	}
	return n
}

// pitchOf renders one second and returns its pitch in semitones relative
// to the sample's root key.
func pitchOf(e *Engine) float64 {
	render(e, 2048)
	n := crossings(render(e, testRate))
	return 12 * math.Log2(float64(n)/(2.0*testRate/testPeriod))
}
