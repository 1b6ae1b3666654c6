// Command pawc runs a PawScript program: parse, resolve imports, type
// check, interpret. Grounded on the teacher's cmd/app/main.go for flag
// wiring, logging setup, and version/help output; the capability-kernel
// wiring (internal/kernel, internal/svc, internal/privileged) is
// dropped in favor of a direct pipeline call chain, since spec.md's
// Non-goals exclude a capability-security model (see DESIGN.md).
package main

import (
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	pawerrors "pawscript/internal/errors"
	"pawscript/internal/host"
	"pawscript/internal/interpreter"
	"pawscript/internal/lexer"
	"pawscript/internal/log"
	"pawscript/internal/module"
	"pawscript/internal/token"
	"pawscript/internal/util"
)

const DefaultRootPath = "."

var (
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
)

var (
	help      bool
	version   bool
	logLevel  string
	logFile   string
	rootPath  string
	pawHome   string
	stackSize int
	debugAST  bool
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	flag.StringVar(&rootPath, "root", DefaultRootPath, "Root path stored in the configuration (imports resolve from the script's directory, then -paw-home)")
	flag.StringVar(&pawHome, "paw-home", "", "Module search root (defaults to PAWSCRIPT_HOME)")
	flag.IntVar(&stackSize, "stack-size", 0, "Backup stack size in MiB (0 uses the interpreter default)")
	flag.BoolVar(&debugAST, "debug-ast", false, "Set the debug-AST flag in the configuration (no AST output is written)")
	flag.StringVar(&logLevel, "log-level", "none", "Log level: trace, debug, info, warn, error, none")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {
	flag.Parse()

	log.InitLogger(logLevel, logFile, true)
	defer log.Close()

	// internal/object's binding-trace slog.Debug calls only matter when
	// the CLI is asked for trace/debug output; otherwise discard them.
	slogLevel := slog.LevelInfo
	if logLevel == "trace" || logLevel == "debug" {
		slogLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logWriterFor(logLevel), &slog.HandlerOptions{Level: slogLevel})))

	if version {
		printVersion()
		return
	}
	if help || flag.NArg() == 0 {
		printHelp()
		if !help {
			os.Exit(2)
		}
		return
	}

	scriptPath := flag.Arg(0)

	cfg := util.Configuration{
		Version:      Version,
		BuildDate:    BuildDate,
		Commit:       Commit,
		RootPath:     rootPath,
		PawHome:      pawHome,
		StackSize:    stackSize,
		DebugJsonAST: debugAST,
	}
	if cfg.PawHome == "" {
		cfg.PawHome = os.Getenv("PAWSCRIPT_HOME")
	}
	if err := host.LoadManifest(filepath.Dir(scriptPath), &cfg); err != nil {
		log.Error("reading %s: %v", host.ManifestFileName, err)
		os.Exit(1)
	}

	interpreter.ConfigureStack(cfg.StackSize)

	bridge := host.NewOSBridge()
	resolver := module.NewResolver(cfg.PawHome)
	bridge.RegisterBuiltins(resolver)
	log.Debug("resolving %s (paw_home=%q)", scriptPath, cfg.PawHome)
	prog, _, interp, err := resolver.ResolveEntry(scriptPath)
	if err != nil {
		reportError(err, scriptPath)
		os.Exit(1)
	}
	bridge.Install(interp)

	log.Trace("running %s", scriptPath)
	if err := interp.Run(prog); err != nil {
		reportError(err, scriptPath)
		os.Exit(1)
	}
}

// reportError prints err, and if it carries a token.Span (a lex, parse,
// type, or runtime error), the surrounding source lines from scriptPath
// with a caret at the failing column, in the teacher's diagnostic style.
func reportError(err error, scriptPath string) {
	fmt.Fprintln(os.Stderr, err)

	span, ok := errorSpan(err)
	if !ok {
		return
	}
	src, readErr := os.ReadFile(scriptPath)
	if readErr != nil {
		return
	}
	fmt.Fprintln(os.Stderr, util.GetContextLines(string(src), span.Line, span.Col, span.Start))
}

func errorSpan(err error) (token.Span, bool) {
	var lexErr *pawerrors.LexError
	if stderrors.As(err, &lexErr) {
		return lexErr.Span, true
	}
	var scanErr *lexer.Error
	if stderrors.As(err, &scanErr) {
		return scanErr.Span, true
	}
	var parseErr *pawerrors.ParseError
	if stderrors.As(err, &parseErr) {
		return parseErr.Span, true
	}
	var typeErr *pawerrors.TypeError
	if stderrors.As(err, &typeErr) {
		return typeErr.Span, true
	}
	var runtimeErr *pawerrors.RuntimeError
	if stderrors.As(err, &runtimeErr) {
		return runtimeErr.Span, true
	}
	return token.Span{}, false
}

// logWriterFor returns where internal/object's slog trace output goes.
// It stays silent below trace/debug verbosity so a normal run's stderr
// isn't cluttered with per-binding trace lines.
func logWriterFor(level string) io.Writer {
	if level != "trace" && level != "debug" {
		return io.Discard
	}
	if logFile == "" {
		return os.Stderr
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory for %q: %v; falling back to stderr\n", logFile, err)
		return os.Stderr
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file %q: %v; falling back to stderr\n", logFile, err)
		return os.Stderr
	}
	return f
}

func printVersion() {
	fmt.Printf("pawc version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: pawc [options] <script.paw> [args...]

Options:
  -root <path>        Root path stored in the configuration; imports resolve from the script's directory, then -paw-home. Default is '.'
  -paw-home <path>     Module search root (defaults to PAWSCRIPT_HOME)
  -stack-size <MiB>    Backup stack size in MiB
  -debug-ast           Set the debug-AST flag in the configuration (no AST output is written)
  -help                Display this help information and exit
  -version             Display version information and exit
  -log-level <level>   Set the log level: trace, debug, info, warn, error, none. Default is 'none'
  -log-file <path>     Specify a log file to write logs. Default is stderr

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}

