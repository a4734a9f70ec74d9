package codegen

// Context is the translation state threaded through the whole command
// sequence. It is created once per run and must outlive unit boundaries so
// that every generated symbol is unique program-wide.
type Context struct {
	// Function is the function whose body is being translated; empty before
	// the first function command.
	Function string

	// Unit is the translation unit of the command being translated.
	Unit string

	Labels *Labels
}

// NewContext creates a fresh translation context.
func NewContext() *Context {
	return &Context{Labels: NewLabels()}
}

// scope returns the symbol of a user label in the current function.
func (c *Context) scope(label string) string {
	return Scoped(c.Function, label)
}
