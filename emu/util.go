package emu

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
)

// LevelTrace is the level of emulator traces.
const LevelTrace slog.Level = slog.LevelInfo + 1

// Trace logs at LevelTrace.
func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

var pointerNames = []string{"SP", "LCL", "ARG", "THIS", "THAT"}

// StateTable renders the registers, the pointer cells, temp and the stack
// above base.
func StateTable(m *Machine, base int) string {
	regTable := table.NewWriter()
	regTable.SetTitle("Registers")
	regTable.AppendHeader(table.Row{"PC", "A", "D", "Steps", "Halted"})
	regTable.AppendRow(table.Row{m.PC, m.A, m.D, m.Steps, m.Halted()})

	ptrTable := table.NewWriter()
	ptrTable.SetTitle("Pointers")
	header := table.Row{}
	row := table.Row{}
	for i, name := range pointerNames {
		header = append(header, name)
		row = append(row, m.RAM[i])
	}
	for i := 5; i < 13; i++ {
		header = append(header, fmt.Sprintf("R%d", i))
		row = append(row, m.RAM[i])
	}
	ptrTable.AppendHeader(header)
	ptrTable.AppendRow(row)

	stackTable := table.NewWriter()
	stackTable.SetTitle(fmt.Sprintf("Stack@%d", base))
	stackTable.AppendHeader(table.Row{"Address", "Value"})
	for i, v := range m.Stack(base) {
		stackTable.AppendRow(table.Row{base + i, v})
	}

	return regTable.Render() + "\n" + ptrTable.Render() + "\n" + stackTable.Render() + "\n"
}
