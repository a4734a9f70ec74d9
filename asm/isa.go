package asm

// ISA holds the bit encodings of the C-instruction fields.
type ISA struct {
	name string
	comp map[string]uint16
	dest map[string]uint16
	jump map[string]uint16
}

// NewISA creates an empty instruction set.
func NewISA(name string) *ISA {
	return &ISA{
		name: name,
		comp: make(map[string]uint16),
		dest: make(map[string]uint16),
		jump: make(map[string]uint16),
	}
}

// Name returns the name of the instruction set.
func (isa *ISA) Name() string {
	return isa.name
}

func (isa *ISA) registerComp(mnemonic string, bits uint16) {
	isa.comp[mnemonic] = bits
}

func (isa *ISA) registerDest(mnemonic string, bits uint16) {
	isa.dest[mnemonic] = bits
}

func (isa *ISA) registerJump(mnemonic string, bits uint16) {
	isa.jump[mnemonic] = bits
}

// Comp returns the a+c bits (7 bits) of a computation mnemonic.
func (isa *ISA) Comp(mnemonic string) (uint16, bool) {
	bits, ok := isa.comp[mnemonic]
	return bits, ok
}

// Dest returns the d bits of a destination mnemonic.
func (isa *ISA) Dest(mnemonic string) (uint16, bool) {
	bits, ok := isa.dest[mnemonic]
	return bits, ok
}

// Jump returns the j bits of a jump mnemonic.
func (isa *ISA) Jump(mnemonic string) (uint16, bool) {
	bits, ok := isa.jump[mnemonic]
	return bits, ok
}

// DefaultISA is the Hack instruction set.
var DefaultISA = newHackISA()

func newHackISA() *ISA {
	isa := NewISA("Hack")

	for mnemonic, bits := range map[string]uint16{
		"0":   0b0101010,
		"1":   0b0111111,
		"-1":  0b0111010,
		"D":   0b0001100,
		"A":   0b0110000,
		"!D":  0b0001101,
		"!A":  0b0110001,
		"-D":  0b0001111,
		"-A":  0b0110011,
		"D+1": 0b0011111,
		"A+1": 0b0110111,
		"D-1": 0b0001110,
		"A-1": 0b0110010,
		"D+A": 0b0000010,
		"D-A": 0b0010011,
		"A-D": 0b0000111,
		"D&A": 0b0000000,
		"D|A": 0b0010101,
		"M":   0b1110000,
		"!M":  0b1110001,
		"-M":  0b1110011,
		"M+1": 0b1110111,
		"M-1": 0b1110010,
		"D+M": 0b1000010,
		"D-M": 0b1010011,
		"M-D": 0b1000111,
		"D&M": 0b1000000,
		"D|M": 0b1010101,
	} {
		isa.registerComp(mnemonic, bits)
	}

	// Commutative spellings.
	for alias, canonical := range map[string]string{
		"1+D": "D+1", "1+A": "A+1", "1+M": "M+1",
		"A+D": "D+A", "M+D": "D+M",
		"A&D": "D&A", "M&D": "D&M",
		"A|D": "D|A", "M|D": "D|M",
	} {
		isa.registerComp(alias, isa.comp[canonical])
	}

	for mnemonic, bits := range map[string]uint16{
		"":    0b000,
		"M":   0b001,
		"D":   0b010,
		"MD":  0b011,
		"DM":  0b011,
		"A":   0b100,
		"AM":  0b101,
		"MA":  0b101,
		"AD":  0b110,
		"DA":  0b110,
		"AMD": 0b111,
		"ADM": 0b111,
	} {
		isa.registerDest(mnemonic, bits)
	}

	for mnemonic, bits := range map[string]uint16{
		"":    0b000,
		"JGT": 0b001,
		"JEQ": 0b010,
		"JGE": 0b011,
		"JLT": 0b100,
		"JNE": 0b101,
		"JLE": 0b110,
		"JMP": 0b111,
	} {
		isa.registerJump(mnemonic, bits)
	}

	return isa
}
