package interpreter

import (
	"pawscript/internal/ast"
	"pawscript/internal/object"
	"pawscript/internal/types"
)

// evalSniff implements spec.md §4.5(b): for every sniff, lastly runs
// exactly once per entry no matter how the try/snatch blocks finish —
// normal completion, a caught or uncaught Bark, or an outward-transiting
// Return/Break/Continue — and a signal raised by lastly itself
// supersedes whatever preceded it.
//
// Grounded on the teacher's object.Environment.ExecuteDeferred, but
// re-expressed as a single named-return-plus-defer rather than an
// explicit defer-stack walk: PawScript has exactly one lastly per
// sniff, never a stack of them.
func (in *Interpreter) evalSniff(s *ast.SniffStatement, env *object.Environment) (result *Signal) {
	if s.Lastly != nil {
		defer func() {
			if lastlySig := in.evalBlock(s.Lastly, env); lastlySig != nil {
				result = lastlySig
			}
		}()
	}

	sig := in.evalBlock(s.Try, env)
	if sig != nil && sig.Kind == SigBark {
		if s.Snatch == nil {
			return sig
		}
		snatchEnv := object.NewEnclosedEnvironment(env)
		if s.SnatchName != nil {
			snatchEnv.Define(s.SnatchName.Value, &object.String{Value: sig.Message}, types.String)
		}
		return in.evalBlock(s.Snatch, snatchEnv)
	}
	return sig
}
