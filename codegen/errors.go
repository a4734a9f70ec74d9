package codegen

import (
	"fmt"

	"github.com/sarchlab/hackvm/vm"
)

// GenerationError reports a command that the generator cannot translate.
// Reaching it means an earlier stage let an invalid command through.
type GenerationError struct {
	Command vm.Command
	Reason  string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation error at %s (%s): %s",
		e.Command.Position(), e.Command, e.Reason)
}

func generationError(cmd vm.Command, format string, args ...any) error {
	return &GenerationError{Command: cmd, Reason: fmt.Sprintf(format, args...)}
}
