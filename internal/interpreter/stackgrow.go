package interpreter

import "runtime/debug"

// DefaultStackMiB is the backup stack size spec.md §6 documents for
// `pawc` when --stack-size is not given.
const DefaultStackMiB = 1

// ConfigureStack sets the ceiling Go's runtime grows a goroutine's
// stack to, from the host's configured backup stack size (spec.md §5
// "Stack", §6 --stack-size), in MiB.
//
// Go goroutine stacks already start small and grow on demand, which is
// the "freshly allocated larger stack, transparent to PawScript code"
// behavior spec.md describes — none of the pack examples implement
// manual stack switching of their own, so this is a deliberate
// standard-library shim rather than a ported mechanism (see DESIGN.md).
func ConfigureStack(mib int) {
	if mib <= 0 {
		mib = DefaultStackMiB
	}
	debug.SetMaxStack(mib * 1024 * 1024)
}
