// Package control implements the text control surface: messages made of a
// selector and atoms, as sent by a patcher or typed on a console.
package control

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// Atom is a single message argument, either a number or a symbol.
type Atom struct {
	Symbol   string
	Value    float64
	IsSymbol bool
}

// Float returns a numeric atom.
func Float(v float64) Atom {
	return Atom{Value: v}
}

// Symbol returns a symbol atom.
func Symbol(s string) Atom {
	return Atom{Symbol: s, IsSymbol: true}
}

// Int reads the atom as an integer, truncating toward zero. Symbols and NaN read as 0.
func (a Atom) Int() int {
	if a.IsSymbol || math.IsNaN(a.Value) {
		return 0
	}
	return int(a.Value)
}

// Float32 reads the atom as a float. Symbols read as 0.
func (a Atom) Float32() float32 {
	if a.IsSymbol {
		return 0
	}
	return float32(a.Value)
}

func (a Atom) String() string {
	if a.IsSymbol {
		return a.Symbol
	}
	return strconv.FormatFloat(a.Value, 'g', -1, 64)
}

// Message is a selector followed by its arguments.
type Message struct {
	Selector string
	Args     []Atom
}

func (m Message) String() string {
	var b strings.Builder
	b.WriteString(m.Selector)
	for _, a := range m.Args {
		b.WriteByte(' ')
		b.WriteString(a.String())
	}
	return b.String()
}

// Parse reads one message such as "note 60 100 2;". A leading number makes
// the message a "float" when alone and a "list" otherwise.
func Parse(line string) (Message, error) {
	line = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), ";"))
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Message{}, fmt.Errorf("%w: empty message", contracts.ErrMalformedInput)
	}

	atoms := make([]Atom, len(fields))
	for i, f := range fields {
		atoms[i] = parseAtom(f)
	}
	if !atoms[0].IsSymbol {
		if len(atoms) == 1 {
			return Message{Selector: "float", Args: atoms}, nil
		}
		return Message{Selector: "list", Args: atoms}, nil
	}
	return Message{Selector: atoms[0].Symbol, Args: atoms[1:]}, nil
}

func parseAtom(s string) Atom {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(v)
	}
	return Symbol(s)
}

// ParseScript reads messages separated by semicolons or newlines. Blank
// lines and lines starting with '#' are skipped.
func ParseScript(r io.Reader) ([]Message, error) {
	var msgs []Message
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, part := range strings.Split(line, ";") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			msg, err := Parse(part)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			msgs = append(msgs, msg)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return msgs, nil
}
