package control

import (
	"fmt"
	"math"

	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// Target receives validated events. Channels are 1-based.
type Target interface {
	Note(key, velocity, channel int)
	ProgramChange(program, channel int)
	ControlChange(controller, value, channel int)
	PitchBend(value, channel int)
	ChannelPressure(value, channel int)
	PolyPressure(value, key, channel int)
	BankSelect(bank, channel int)
	RawParameter(channel, param int, value float32)
	SystemExclusive(data []byte)
}

// Handlers are the non-event selectors. Nil handlers make the selector unknown.
type Handlers struct {
	Raw  func(v int)             // float: one byte for the stream decoder
	Load func(name string) error // load: soundfont by name
	Info func()                  // info: engine version diagnostic
}

type arity struct {
	min, max int // max < 0 means unbounded
}

func (a arity) accepts(n int) bool {
	return n >= a.min && (a.max < 0 || n <= a.max)
}

func (a arity) String() string {
	switch {
	case a.max < 0:
		return fmt.Sprintf("at least %d", a.min)
	case a.min == a.max:
		return fmt.Sprintf("%d", a.min)
	default:
		return fmt.Sprintf("%d or %d", a.min, a.max)
	}
}

var arities = map[string]arity{
	"note":      {2, 3},
	"list":      {2, 3},
	"pgm":       {1, 2},
	"ctl":       {2, 3},
	"bend":      {1, 2},
	"touch":     {1, 2},
	"polytouch": {2, 3},
	"bank":      {1, 2},
	"gen":       {3, 3},
	"sysex":     {1, -1},
	"float":     {1, 1},
	"load":      {1, 1},
	"info":      {0, 0},
}

// Router validates control messages and routes them to a Target.
// Like the decoder it is not safe for concurrent use.
type Router struct {
	target   Target
	handlers Handlers
	sysex    []byte
}

// NewRouter creates a router whose sysex messages are truncated to capacity
// bytes. A non-positive capacity selects contracts.DefaultSysExCapacity.
func NewRouter(target Target, capacity int, handlers Handlers) *Router {
	if capacity <= 0 {
		capacity = contracts.DefaultSysExCapacity
	}
	return &Router{target: target, handlers: handlers, sysex: make([]byte, capacity)}
}

// Route delivers msg. Wrong arity yields ErrMalformedInput and unhandled
// selectors ErrUnknownSelector; nothing reaches the target in either case.
// Load errors are returned as is.
func (r *Router) Route(msg Message) error {
	a, ok := arities[msg.Selector]
	if !ok || !r.handled(msg.Selector) {
		return fmt.Errorf("%w: %q", contracts.ErrUnknownSelector, msg.Selector)
	}
	if !a.accepts(len(msg.Args)) {
		return fmt.Errorf("%w: %s expects %s arguments, got %d",
			contracts.ErrMalformedInput, msg.Selector, a, len(msg.Args))
	}

	args := msg.Args
	switch msg.Selector {
	case "note", "list":
		r.target.Note(args[0].Int(), args[1].Int(), channelArg(args, 2))
	case "pgm":
		r.target.ProgramChange(args[0].Int(), channelArg(args, 1))
	case "ctl":
		r.target.ControlChange(args[0].Int(), args[1].Int(), channelArg(args, 2))
	case "bend":
		r.target.PitchBend(args[0].Int(), channelArg(args, 1))
	case "touch":
		r.target.ChannelPressure(args[0].Int(), channelArg(args, 1))
	case "polytouch":
		r.target.PolyPressure(args[0].Int(), args[1].Int(), channelArg(args, 2))
	case "bank":
		r.target.BankSelect(args[0].Int(), channelArg(args, 1))
	case "gen":
		r.target.RawParameter(args[0].Int(), args[1].Int(), args[2].Float32())
	case "sysex":
		n := min(len(args), len(r.sysex))
		for i := 0; i < n; i++ {
			r.sysex[i] = byte(args[i].Int())
		}
		r.target.SystemExclusive(r.sysex[:n])
	case "float":
		r.handlers.Raw(rawByte(args[0]))
	case "load":
		if !args[0].IsSymbol {
			return fmt.Errorf("%w: load expects a file name", contracts.ErrMalformedInput)
		}
		return r.handlers.Load(args[0].Symbol)
	case "info":
		r.handlers.Info()
	}
	return nil
}

func (r *Router) handled(selector string) bool {
	switch selector {
	case "float":
		return r.handlers.Raw != nil
	case "load":
		return r.handlers.Load != nil
	case "info":
		return r.handlers.Info != nil
	default:
		return r.target != nil
	}
}

func channelArg(args []Atom, i int) int {
	if len(args) > i {
		return args[i].Int()
	}
	return 1
}

// rawByte maps a float to a decoder input, keeping negative and NaN values
// out of range so the decoder clears its pending state.
func rawByte(a Atom) int {
	if a.IsSymbol || math.IsNaN(a.Value) || a.Value < 0 {
		return -1
	}
	if a.Value > 255 {
		return 256
	}
	return int(a.Value)
}
