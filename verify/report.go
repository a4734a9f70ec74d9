package verify

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/hackvm/asm"
	"github.com/sarchlab/hackvm/codegen"
	"github.com/sarchlab/hackvm/config"
	"github.com/sarchlab/hackvm/emu"
	"github.com/sarchlab/hackvm/vm"
)

// compared lists the RAM cells checked after both runs halt.
var compared = []struct {
	name string
	addr int
}{
	{"SP", 0}, {"LCL", 1}, {"ARG", 2}, {"THIS", 3}, {"THAT", 4},
	{"R5", 5}, {"R6", 6}, {"R7", 7}, {"R8", 8},
	{"R9", 9}, {"R10", 10}, {"R11", 11}, {"R12", 12},
}

// Mismatch is a cell whose final value differs between the two runs.
type Mismatch struct {
	Name      string
	Simulated int16
	Emulated  int16
}

// VerificationReport represents a complete verification report
type VerificationReport struct {
	CommandCount int
	LintIssues   []Issue

	SimulationErr   error
	SimulationSteps int

	TranslationErr error
	Instructions   int
	EmulationErr   error
	EmulationSteps int

	Mismatches []Mismatch
	Top        [2]int16 // simulated, emulated
}

// OK reports whether every stage passed.
func (r *VerificationReport) OK() bool {
	return len(r.LintIssues) == 0 &&
		r.SimulationErr == nil &&
		r.TranslationErr == nil &&
		r.EmulationErr == nil &&
		len(r.Mismatches) == 0
}

// GenerateReport lints cmds, runs them on the functional simulator and on
// the emulator, and compares the final states.
func GenerateReport(cmds []vm.Command, cfg config.Config) *VerificationReport {
	report := &VerificationReport{CommandCount: len(cmds)}

	report.LintIssues = RunLint(cmds)

	fs, err := NewFunctionalSimulator(cmds, cfg)
	if err == nil {
		err = fs.Run(cfg.MaxSteps)
		report.SimulationSteps = fs.Steps()
	}
	report.SimulationErr = err

	machine, err := translateAndRun(cmds, cfg, report)
	if err != nil {
		return report
	}

	if report.SimulationErr == nil && report.EmulationErr == nil {
		for _, c := range compared {
			if fs.RAM[c.addr] != machine.RAM[c.addr] {
				report.Mismatches = append(report.Mismatches, Mismatch{
					Name:      c.name,
					Simulated: fs.RAM[c.addr],
					Emulated:  machine.RAM[c.addr],
				})
			}
		}
		report.Top = [2]int16{fs.Top(), machine.Top()}
		if report.Top[0] != report.Top[1] {
			report.Mismatches = append(report.Mismatches, Mismatch{
				Name:      "top",
				Simulated: report.Top[0],
				Emulated:  report.Top[1],
			})
		}
	}

	return report
}

func translateAndRun(
	cmds []vm.Command,
	cfg config.Config,
	report *VerificationReport,
) (*emu.Machine, error) {
	lines, err := codegen.NewBuilder().WithConfig(cfg).Build().Translate(cmds)
	if err == nil {
		var prog *asm.Program
		prog, err = asm.Assemble(lines)
		if err == nil {
			report.Instructions = len(prog.Words)

			machine, runErr := emu.Run(prog.Words, cfg.MaxSteps)
			report.EmulationErr = runErr
			if machine != nil {
				report.EmulationSteps = machine.Steps
			}
			return machine, nil
		}
	}

	report.TranslationErr = err
	return nil, err
}

// WriteReport writes a formatted report to a writer
func (r *VerificationReport) WriteReport(w io.Writer) {
	separator := strings.Repeat("=", 60)

	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, "VM PROGRAM VERIFICATION REPORT")
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "Commands: %d\n", r.CommandCount)

	fmt.Fprintln(w, "\nSTAGE 1: STATIC LINT CHECKS")
	if len(r.LintIssues) == 0 {
		fmt.Fprintln(w, "✓ No lint issues found!")
	} else {
		fmt.Fprintln(w, IssueTable(r.LintIssues))
	}

	fmt.Fprintln(w, "\nSTAGE 2: FUNCTIONAL SIMULATION")
	if r.SimulationErr == nil {
		fmt.Fprintf(w, "✓ Halted after %d commands\n", r.SimulationSteps)
	} else {
		fmt.Fprintf(w, "⚠ Simulation error: %v\n", r.SimulationErr)
	}

	fmt.Fprintln(w, "\nSTAGE 3: TRANSLATE, ASSEMBLE, EMULATE")
	switch {
	case r.TranslationErr != nil:
		fmt.Fprintf(w, "⚠ Translation error: %v\n", r.TranslationErr)
	case r.EmulationErr != nil:
		fmt.Fprintf(w, "⚠ Emulation error after %d instructions: %v\n",
			r.EmulationSteps, r.EmulationErr)
	default:
		fmt.Fprintf(w, "✓ %d instructions, halted after %d steps\n",
			r.Instructions, r.EmulationSteps)
	}

	if len(r.Mismatches) > 0 {
		t := table.NewWriter()
		t.SetTitle("State mismatches")
		t.AppendHeader(table.Row{"Cell", "Simulated", "Emulated"})
		for _, m := range r.Mismatches {
			t.AppendRow(table.Row{m.Name, m.Simulated, m.Emulated})
		}
		fmt.Fprintln(w, t.Render())
	}

	fmt.Fprintln(w, "\n"+separator)
	if r.OK() {
		fmt.Fprintln(w, "✓ PROGRAM PASSED ALL CHECKS")
	} else {
		fmt.Fprintln(w, "⚠ PROGRAM FAILED VERIFICATION")
	}
	fmt.Fprintln(w, separator)
}

// IssueTable renders lint issues as a table.
func IssueTable(issues []Issue) string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Lint issues (%d)", len(issues)))
	t.AppendHeader(table.Row{"Type", "Position", "Function", "Message"})
	for _, issue := range issues {
		t.AppendRow(table.Row{issue.Type, issue.Position(), issue.Function, issue.Message})
	}
	return t.Render()
}

// SaveReportToFile saves the report to a file.
func (r *VerificationReport) SaveReportToFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	r.WriteReport(file)
	return nil
}
