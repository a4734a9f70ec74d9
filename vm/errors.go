package vm

import "fmt"

// ParseError reports a malformed source line. Any ParseError invalidates the
// whole translation run.
type ParseError struct {
	Unit   string
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	loc := fmt.Sprintf("line %d", e.Line)
	if e.Unit != "" {
		loc = fmt.Sprintf("%s:%d", e.Unit, e.Line)
	}
	return fmt.Sprintf("parse error at %s: %s (%q)", loc, e.Reason, e.Text)
}
