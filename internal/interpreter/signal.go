package interpreter

import (
	"fmt"

	"pawscript/internal/object"
)

// SignalKind distinguishes the four non-local control-flow outcomes
// spec.md §9 models as a single sum type, generalizing the teacher's
// narrower object.ReturnValue wrapper (see DESIGN.md).
type SignalKind int

const (
	SigReturn SignalKind = iota
	SigBreak
	SigContinue
	SigBark
)

// Signal is returned alongside (and in place of) a value by every
// statement/expression evaluator to carry return/break/continue/bark
// outward until the construct that catches it. A nil *Signal means
// normal completion.
type Signal struct {
	Kind    SignalKind
	Value   object.Object // SigReturn's value
	Message string        // SigBark's message
}

func barkf(format string, args ...any) *Signal {
	return &Signal{Kind: SigBark, Message: fmt.Sprintf(format, args...)}
}
