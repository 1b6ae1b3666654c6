package util

// Configuration is the resolved set of process-wide settings read by
// cmd/pawc/main.go from flags and from a paw.toml manifest (the flag
// always wins on conflict), grounded on the teacher's
// internal/util/config.go.
type Configuration struct {
	Version   string
	BuildDate string
	Commit    string

	RootPath  string // from --root; the module resolver does not read it
	PawHome   string // module search root, from --paw-home or PAWSCRIPT_HOME
	StackSize int    // backup-stack size in MiB, from --stack-size or paw.toml

	DebugJsonAST bool
	DebugTxtAST  bool
}
