// Package segment describes the VM memory segments and how each one maps onto
// the Hack RAM.
package segment

import "fmt"

// Segment identifies a named VM memory segment.
type Segment int

const (
	Invalid Segment = iota
	Constant
	Local
	Argument
	This
	That
	Pointer
	Temp
	Static
)

// Mode is the addressing mode of a segment.
type Mode int

const (
	// Immediate segments carry the index itself as the value.
	Immediate Mode = iota
	// Indirect segments are addressed as RAM[base register] + index.
	Indirect
	// Direct segments are addressed as a fixed base + index.
	Direct
)

// Fixed RAM bases of the direct segments.
const (
	PointerBase = 3
	TempBase    = 5
	StaticBase  = 16
)

// Index limits per segment. Constant is bounded by the A-instruction width.
const (
	MaxConstant = 32767
	PointerSize = 2
	TempSize    = 8
	StaticSize  = 240
)

type entry struct {
	name     string
	mode     Mode
	register string
	base     int
	size     int
}

var table = map[Segment]entry{
	Constant: {name: "constant", mode: Immediate, size: MaxConstant + 1},
	Local:    {name: "local", mode: Indirect, register: "LCL", size: MaxConstant + 1},
	Argument: {name: "argument", mode: Indirect, register: "ARG", size: MaxConstant + 1},
	This:     {name: "this", mode: Indirect, register: "THIS", size: MaxConstant + 1},
	That:     {name: "that", mode: Indirect, register: "THAT", size: MaxConstant + 1},
	Pointer:  {name: "pointer", mode: Direct, base: PointerBase, size: PointerSize},
	Temp:     {name: "temp", mode: Direct, base: TempBase, size: TempSize},
	Static:   {name: "static", mode: Direct, base: StaticBase, size: StaticSize},
}

var byName = func() map[string]Segment {
	m := make(map[string]Segment, len(table))
	for s, e := range table {
		m[e.name] = s
	}
	return m
}()

// Lookup returns the segment with the given VM name.
func Lookup(name string) (Segment, bool) {
	s, ok := byName[name]
	return s, ok
}

// Valid reports whether s is one of the eight VM segments.
func (s Segment) Valid() bool {
	_, ok := table[s]
	return ok
}

func (s Segment) String() string {
	if e, ok := table[s]; ok {
		return e.name
	}
	return fmt.Sprintf("Segment(%d)", int(s))
}

// Mode returns the addressing mode of the segment.
func (s Segment) Mode() Mode {
	return table[s].mode
}

// Register returns the base-pointer register symbol of an indirect segment,
// and "" for any other segment.
func (s Segment) Register() string {
	return table[s].register
}

// Address returns the absolute RAM address of a direct segment slot.
func (s Segment) Address(index int) (int, error) {
	e, ok := table[s]
	if !ok || e.mode != Direct {
		return 0, fmt.Errorf("segment %s is not directly addressed", s)
	}
	if err := s.CheckIndex(index); err != nil {
		return 0, err
	}
	return e.base + index, nil
}

// CheckIndex verifies that index lies inside the segment.
func (s Segment) CheckIndex(index int) error {
	e, ok := table[s]
	if !ok {
		return fmt.Errorf("unknown segment %d", int(s))
	}
	if index < 0 || index >= e.size {
		return fmt.Errorf("index %d out of range for segment %s (0..%d)",
			index, e.name, e.size-1)
	}
	return nil
}
