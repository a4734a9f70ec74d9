package verify

import (
	"fmt"
	"strconv"

	"github.com/sarchlab/hackvm/codegen"
	"github.com/sarchlab/hackvm/config"
	"github.com/sarchlab/hackvm/emu"
	"github.com/sarchlab/hackvm/segment"
	"github.com/sarchlab/hackvm/vm"
)

const (
	ramSP   = 0
	ramLCL  = 1
	ramARG  = 2
	ramTHIS = 3
	ramTHAT = 4
)

// FunctionalSimulator executes VM commands directly on a Hack-shaped RAM. A
// saved return address is the index of the command to resume at.
type FunctionalSimulator struct {
	cmds      []vm.Command
	owners    []string
	labels    map[string]int
	functions map[string]int

	cfg    config.Config
	RAM    []int16
	Static map[string]int16

	pc     int
	steps  int
	halted bool
}

// NewFunctionalSimulator prepares cmds for execution under cfg. The bootstrap
// is applied immediately, so the simulator starts in the state the generated
// code reaches when it enters the first command.
func NewFunctionalSimulator(cmds []vm.Command, cfg config.Config) (*FunctionalSimulator, error) {
	fs := &FunctionalSimulator{
		cmds:      cmds,
		owners:    functionOf(cmds),
		labels:    make(map[string]int),
		functions: make(map[string]int),
		cfg:       cfg,
		RAM:       make([]int16, emu.MemorySize),
		Static:    make(map[string]int16),
	}

	for i, cmd := range cmds {
		switch cmd.Kind {
		case vm.Label:
			fs.labels[codegen.Scoped(fs.owners[i], cmd.Arg1)] = i
		case vm.Function:
			fs.functions[cmd.Arg1] = i
		}
	}

	fs.RAM[ramSP] = int16(cfg.StackBase)

	switch {
	case cfg.Bootstrap:
		if err := fs.call(cfg.Entry, 0, 0); err != nil {
			return nil, err
		}
	case cfg.InitSegments:
		fs.RAM[ramLCL] = config.LegacyLocalBase
		fs.RAM[ramARG] = config.LegacyArgumentBase
		fs.RAM[ramTHIS] = config.LegacyThisBase
		fs.RAM[ramTHAT] = config.LegacyThatBase
	}

	return fs, nil
}

// Halted reports whether execution reached a self-loop or ran past the last
// command.
func (fs *FunctionalSimulator) Halted() bool {
	return fs.halted || fs.pc >= len(fs.cmds)
}

// Steps returns the number of commands executed.
func (fs *FunctionalSimulator) Steps() int {
	return fs.steps
}

// SP returns the stack pointer.
func (fs *FunctionalSimulator) SP() int {
	return int(fs.RAM[ramSP])
}

// Top returns the value on top of the stack.
func (fs *FunctionalSimulator) Top() int16 {
	sp := fs.SP()
	if sp <= 0 {
		return 0
	}
	return fs.RAM[sp-1]
}

// Run executes commands until the program halts.
// Returns emu.ErrStepLimit if maxSteps commands ran without halting.
func (fs *FunctionalSimulator) Run(maxSteps int) error {
	for !fs.Halted() {
		if fs.steps >= maxSteps {
			return emu.ErrStepLimit
		}
		if err := fs.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step executes one command.
func (fs *FunctionalSimulator) Step() error {
	if fs.Halted() {
		return nil
	}

	cmd := fs.cmds[fs.pc]
	fs.steps++
	next := fs.pc + 1

	fail := func(format string, args ...any) error {
		return fmt.Errorf("funcsim: %s (%s): %s",
			cmd.Position(), cmd, fmt.Sprintf(format, args...))
	}

	switch cmd.Kind {
	case vm.Arithmetic:
		if err := fs.runArithmetic(cmd.Arg1); err != nil {
			return fail("%v", err)
		}
	case vm.Push:
		v, err := fs.read(cmd)
		if err != nil {
			return fail("%v", err)
		}
		if err := fs.push(v); err != nil {
			return fail("%v", err)
		}
	case vm.Pop:
		v, err := fs.pop()
		if err != nil {
			return fail("%v", err)
		}
		if err := fs.write(cmd, v); err != nil {
			return fail("%v", err)
		}
	case vm.Label:
	case vm.Goto:
		target, ok := fs.labels[codegen.Scoped(fs.owners[fs.pc], cmd.Arg1)]
		if !ok {
			return fail("undefined label")
		}
		if target == fs.pc-1 {
			fs.halted = true
			return nil
		}
		next = target
	case vm.IfGoto:
		target, ok := fs.labels[codegen.Scoped(fs.owners[fs.pc], cmd.Arg1)]
		if !ok {
			return fail("undefined label")
		}
		v, err := fs.pop()
		if err != nil {
			return fail("%v", err)
		}
		if v != 0 {
			next = target
		}
	case vm.Call:
		if err := fs.call(cmd.Arg1, cmd.Arg2, next); err != nil {
			return fail("%v", err)
		}
		return nil
	case vm.Function:
		for i := 0; i < cmd.Arg2; i++ {
			if err := fs.push(0); err != nil {
				return fail("%v", err)
			}
		}
	case vm.Return:
		resume, err := fs.ret()
		if err != nil {
			return fail("%v", err)
		}
		next = resume
	default:
		return fail("unknown command kind")
	}

	fs.pc = next
	return nil
}

// cell checks that addr is a RAM address the stack may use. Address 0 holds
// SP itself.
func cell(addr int) error {
	if addr <= ramSP || addr >= emu.MemorySize {
		return fmt.Errorf("address %d out of range", addr)
	}
	return nil
}

func (fs *FunctionalSimulator) push(v int16) error {
	sp := int(fs.RAM[ramSP])
	if err := cell(sp); err != nil {
		return fmt.Errorf("stack overflow: %w", err)
	}
	fs.RAM[sp] = v
	fs.RAM[ramSP]++
	return nil
}

func (fs *FunctionalSimulator) pop() (int16, error) {
	sp := int(fs.RAM[ramSP]) - 1
	if sp < fs.cfg.StackBase || cell(sp) != nil {
		return 0, fmt.Errorf("stack underflow at SP=%d", sp+1)
	}
	fs.RAM[ramSP]--
	return fs.RAM[sp], nil
}

func (fs *FunctionalSimulator) runArithmetic(op string) error {
	if vm.IsUnary(op) {
		x, err := fs.pop()
		if err != nil {
			return err
		}
		switch op {
		case vm.OpNeg:
			return fs.push(-x)
		case vm.OpNot:
			return fs.push(^x)
		}
		return fmt.Errorf("unknown operator %q", op)
	}

	y, err := fs.pop()
	if err != nil {
		return err
	}
	x, err := fs.pop()
	if err != nil {
		return err
	}

	var r int16
	switch op {
	case vm.OpAdd:
		r = x + y
	case vm.OpSub:
		r = x - y
	case vm.OpAnd:
		r = x & y
	case vm.OpOr:
		r = x | y
	case vm.OpEq:
		r = boolean(x == y)
	case vm.OpGt:
		r = boolean(x > y)
	case vm.OpLt:
		r = boolean(x < y)
	default:
		return fmt.Errorf("unknown operator %q", op)
	}

	return fs.push(r)
}

func boolean(b bool) int16 {
	if b {
		return -1
	}
	return 0
}

// call mirrors the generated calling sequence; resume is the command index
// stored as the return address.
func (fs *FunctionalSimulator) call(function string, nArgs int, resume int) error {
	target, ok := fs.functions[function]
	if !ok {
		return fmt.Errorf("undefined function %s", function)
	}

	for _, v := range []int16{
		int16(resume), fs.RAM[ramLCL], fs.RAM[ramARG], fs.RAM[ramTHIS], fs.RAM[ramTHAT],
	} {
		if err := fs.push(v); err != nil {
			return err
		}
	}

	fs.RAM[ramARG] = fs.RAM[ramSP] - int16(nArgs) - 5
	fs.RAM[ramLCL] = fs.RAM[ramSP]
	fs.pc = target

	return nil
}

// ret unwinds the frame anchored at LCL and returns the resume index.
func (fs *FunctionalSimulator) ret() (int, error) {
	frame := int(fs.RAM[ramLCL])
	if err := cell(frame - 5); err != nil {
		return 0, fmt.Errorf("no call frame below LCL=%d", frame)
	}
	if err := cell(frame - 1); err != nil {
		return 0, fmt.Errorf("no call frame below LCL=%d", frame)
	}
	arg := int(fs.RAM[ramARG])
	if err := cell(arg); err != nil {
		return 0, fmt.Errorf("ARG=%d: %w", arg, err)
	}

	resume := int(fs.RAM[frame-5])
	if resume < 0 || resume > len(fs.cmds) {
		return 0, fmt.Errorf("saved return index %d is not a command", resume)
	}
	v, err := fs.pop()
	if err != nil {
		return 0, err
	}
	fs.RAM[arg] = v
	fs.RAM[ramSP] = int16(arg + 1)

	fs.RAM[ramTHAT] = fs.RAM[frame-1]
	fs.RAM[ramTHIS] = fs.RAM[frame-2]
	fs.RAM[ramARG] = fs.RAM[frame-3]
	fs.RAM[ramLCL] = fs.RAM[frame-4]

	return resume, nil
}

func (fs *FunctionalSimulator) address(cmd vm.Command) (int, error) {
	seg := cmd.Segment()
	if err := seg.CheckIndex(cmd.Arg2); err != nil {
		return 0, err
	}

	switch seg.Mode() {
	case segment.Indirect:
		base := map[segment.Segment]int{
			segment.Local:    ramLCL,
			segment.Argument: ramARG,
			segment.This:     ramTHIS,
			segment.That:     ramTHAT,
		}[seg]
		return int(uint16(fs.RAM[base])) + cmd.Arg2, nil
	case segment.Direct:
		return seg.Address(cmd.Arg2)
	}

	return 0, fmt.Errorf("segment %s has no address", seg)
}

func (fs *FunctionalSimulator) staticKey(cmd vm.Command) (string, bool, error) {
	if cmd.Segment() != segment.Static ||
		fs.cfg.StaticMode != config.StaticUnit || cmd.Unit == "" {
		return "", false, nil
	}
	if !vm.ValidName(cmd.Unit) {
		return "", false, fmt.Errorf("unit name %q cannot prefix a static symbol", cmd.Unit)
	}
	return cmd.Unit + "." + strconv.Itoa(cmd.Arg2), true, nil
}

func (fs *FunctionalSimulator) read(cmd vm.Command) (int16, error) {
	if cmd.Segment() == segment.Constant {
		return int16(cmd.Arg2), nil
	}
	key, ok, err := fs.staticKey(cmd)
	if err != nil {
		return 0, err
	}
	if ok {
		return fs.Static[key], nil
	}

	addr, err := fs.address(cmd)
	if err != nil {
		return 0, err
	}
	if addr >= len(fs.RAM) {
		return 0, fmt.Errorf("address %d out of range", addr)
	}
	return fs.RAM[addr], nil
}

func (fs *FunctionalSimulator) write(cmd vm.Command, v int16) error {
	key, ok, err := fs.staticKey(cmd)
	if err != nil {
		return err
	}
	if ok {
		fs.Static[key] = v
		return nil
	}

	addr, err := fs.address(cmd)
	if err != nil {
		return err
	}
	if addr >= len(fs.RAM) {
		return fmt.Errorf("address %d out of range", addr)
	}
	fs.RAM[addr] = v
	return nil
}
