package vm

import (
	"fmt"
	"regexp"
	"strconv"
)

// A bare name never contains '$', which keeps it free for scoping.
var namePattern = regexp.MustCompile(`^[A-Za-z_.:][A-Za-z0-9_.:]*$`)

var reservedSymbols = func() map[string]bool {
	m := map[string]bool{
		"SP": true, "LCL": true, "ARG": true, "THIS": true, "THAT": true,
		"SCREEN": true, "KBD": true,
	}
	for i := 0; i < 16; i++ {
		m["R"+strconv.Itoa(i)] = true
	}
	return m
}()

// ValidName reports whether name can be used as a label, function or unit
// name. Valid names are also valid assembler symbols.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// Reserved reports whether name is a predefined Hack symbol.
func Reserved(name string) bool {
	return reservedSymbols[name]
}

// CheckFunctionName verifies that name can label a function entry point.
func CheckFunctionName(name string) error {
	if !ValidName(name) {
		return fmt.Errorf("invalid function name %q", name)
	}
	if Reserved(name) {
		return fmt.Errorf("function name %q is a reserved symbol", name)
	}
	return nil
}
