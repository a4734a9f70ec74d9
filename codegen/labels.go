package codegen

import "strconv"

// Separator joins a scope and a name in generated symbols. The parser never
// accepts it inside a bare label or function name.
const Separator = "$"

// HaltLabel is the target of the terminating self-loop.
const HaltLabel = Separator + "halt" + Separator

// Labels is the label generator of one translation run. It owns two
// independent counters: a run-wide counter for comparison branch triples and
// a per-function counter for call-site return labels.
type Labels struct {
	compare int
	calls   map[string]int
}

// NewLabels creates a label generator with both counters at zero.
func NewLabels() *Labels {
	return &Labels{calls: make(map[string]int)}
}

// Compare allocates a fresh branch triple for one comparison site.
func (l *Labels) Compare() (isTrue, isFalse, done string) {
	n := strconv.Itoa(l.compare)
	l.compare++

	return Separator + "true" + Separator + n,
		Separator + "false" + Separator + n,
		Separator + "done" + Separator + n
}

// Return allocates the resumption label of a call site inside caller.
func (l *Labels) Return(caller string) string {
	n := l.calls[caller]
	l.calls[caller] = n + 1

	return caller + Separator + "ret" + Separator + strconv.Itoa(n)
}

// Scoped qualifies a user label with its owning function.
func Scoped(function, label string) string {
	return function + Separator + label
}
