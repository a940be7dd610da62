package control

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/leandrodaf/midisynth/sdk/contracts"
)

type target struct {
	calls []string
	sysex []byte
}

func (t *target) add(format string, args ...any) {
	t.calls = append(t.calls, fmt.Sprintf(format, args...))
}

func (t *target) Note(key, vel, ch int)             { t.add("note %d %d %d", key, vel, ch) }
func (t *target) ProgramChange(prog, ch int)        { t.add("pgm %d %d", prog, ch) }
func (t *target) ControlChange(ctl, val, ch int)    { t.add("ctl %d %d %d", ctl, val, ch) }
func (t *target) PitchBend(val, ch int)             { t.add("bend %d %d", val, ch) }
func (t *target) ChannelPressure(val, ch int)       { t.add("touch %d %d", val, ch) }
func (t *target) PolyPressure(val, key, ch int)     { t.add("polytouch %d %d %d", val, key, ch) }
func (t *target) BankSelect(bank, ch int)           { t.add("bank %d %d", bank, ch) }
func (t *target) RawParameter(ch, p int, v float32) { t.add("gen %d %d %g", ch, p, v) }
func (t *target) SystemExclusive(data []byte) {
	t.sysex = append([]byte(nil), data...)
	t.add("sysex %d", len(data))
}

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		want Message
	}{
		{"note 60 100 2;", Message{"note", []Atom{Float(60), Float(100), Float(2)}}},
		{"  info  ", Message{"info", []Atom{}}},
		{"load piano.sf2", Message{"load", []Atom{Symbol("piano.sf2")}}},
		{"144", Message{"float", []Atom{Float(144)}}},
		{"60 100", Message{"list", []Atom{Float(60), Float(100)}}},
		{"gen 1 8 -1.5", Message{"gen", []Atom{Float(1), Float(8), Float(-1.5)}}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Parse(tt.line)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}

	if _, err := Parse(" ; "); !errors.Is(err, contracts.ErrMalformedInput) {
		t.Errorf("Parse(empty) error = %v, want ErrMalformedInput", err)
	}
}

func TestParseScript(t *testing.T) {
	script := "# warm up\npgm 5; note 60 100\n\nbend 8192 2;\n"
	msgs, err := ParseScript(strings.NewReader(script))
	if err != nil {
		t.Fatalf("ParseScript() error = %v", err)
	}
	var got []string
	for _, m := range msgs {
		got = append(got, m.String())
	}
	want := []string{"pgm 5", "note 60 100", "bend 8192 2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("messages = %v, want %v", got, want)
	}
}

func TestRouteEvents(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"note 60 100", "note 60 100 1"},
		{"note 60 0 10", "note 60 0 10"},
		{"60 90 3", "note 60 90 3"},
		{"pgm 7", "pgm 7 1"},
		{"pgm 7 16", "pgm 7 16"},
		{"ctl 7 127", "ctl 7 127 1"},
		{"ctl 64 0 2", "ctl 64 0 2"},
		{"bend 8192", "bend 8192 1"},
		{"touch 40 4", "touch 40 4"},
		{"polytouch 30 61", "polytouch 30 61 1"},
		{"bank 128 9", "bank 128 9"},
		{"gen 2 8 99999.5", "gen 2 8 99999.5"},
		{"note 60.9 100.2", "note 60 100 1"},
		{"note foo 100", "note 0 100 1"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			tg := &target{}
			r := NewRouter(tg, 0, Handlers{})
			msg, err := Parse(tt.line)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if err := r.Route(msg); err != nil {
				t.Fatalf("Route() error = %v", err)
			}
			if len(tg.calls) != 1 || tg.calls[0] != tt.want {
				t.Errorf("calls = %v, want [%s]", tg.calls, tt.want)
			}
		})
	}
}

func TestRouteWrongArity(t *testing.T) {
	lines := []string{
		"note 60",
		"note 60 100 1 2",
		"pgm",
		"ctl 7",
		"bend 1 2 3",
		"touch",
		"polytouch 1",
		"bank 1 2 3",
		"gen 1 8",
		"gen 1 8 0 0",
		"sysex",
		"info now",
	}
	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			tg := &target{}
			r := NewRouter(tg, 0, Handlers{Info: func() { t.Error("info called") }})
			msg, _ := Parse(line)
			if err := r.Route(msg); !errors.Is(err, contracts.ErrMalformedInput) {
				t.Errorf("Route() error = %v, want ErrMalformedInput", err)
			}
			if len(tg.calls) != 0 {
				t.Errorf("target received %v", tg.calls)
			}
		})
	}
}

func TestRouteUnknownSelector(t *testing.T) {
	r := NewRouter(&target{}, 0, Handlers{})
	for _, msg := range []Message{{Selector: "panic"}, {Selector: "info"}, {Selector: "float", Args: []Atom{Float(1)}}} {
		if err := r.Route(msg); !errors.Is(err, contracts.ErrUnknownSelector) {
			t.Errorf("Route(%v) error = %v, want ErrUnknownSelector", msg, err)
		}
	}
}

func TestRouteSysExTruncates(t *testing.T) {
	tg := &target{}
	r := NewRouter(tg, 4, Handlers{})
	msg, _ := Parse("sysex 126 127 9 1 5 6")
	if err := r.Route(msg); err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if !reflect.DeepEqual(tg.sysex, []byte{126, 127, 9, 1}) {
		t.Errorf("sysex = %v, want first 4 bytes", tg.sysex)
	}
}

func TestRouteHandlers(t *testing.T) {
	var raw []int
	var loaded string
	infos := 0
	loadErr := fmt.Errorf("%w: missing", contracts.ErrResourceLoad)

	r := NewRouter(&target{}, 0, Handlers{
		Raw: func(v int) { raw = append(raw, v) },
		Load: func(name string) error {
			loaded = name
			return loadErr
		},
		Info: func() { infos++ },
	})

	for _, line := range []string{"144", "60.7", "-3", "300"} {
		msg, _ := Parse(line)
		if err := r.Route(msg); err != nil {
			t.Fatalf("Route(%q) error = %v", line, err)
		}
	}
	if want := []int{144, 60, -1, 256}; !reflect.DeepEqual(raw, want) {
		t.Errorf("raw = %v, want %v", raw, want)
	}

	msg, _ := Parse("load FluidR3_GM")
	if err := r.Route(msg); !errors.Is(err, contracts.ErrResourceLoad) {
		t.Errorf("load error = %v, want ErrResourceLoad", err)
	}
	if loaded != "FluidR3_GM" {
		t.Errorf("loaded %q", loaded)
	}

	msg, _ = Parse("load 12")
	if err := r.Route(msg); !errors.Is(err, contracts.ErrMalformedInput) {
		t.Errorf("numeric load error = %v, want ErrMalformedInput", err)
	}

	msg, _ = Parse("info")
	if err := r.Route(msg); err != nil || infos != 1 {
		t.Errorf("info: err = %v, calls = %d", err, infos)
	}
}
