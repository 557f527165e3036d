package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/shlex"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/gogpu/shaderpack"
	"github.com/gogpu/shaderpack/shader"
	"github.com/gogpu/shaderpack/toolchain"
)

// outputExt is appended to input names when -o names a directory.
const outputExt = ".shpk"

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

type config struct {
	output      string
	stage       string
	model       string
	entry       string
	target      string
	opt         string
	lang        string
	defines     stringList
	includes    stringList
	reflect     bool
	precompiled bool
	werror      bool
	dxc         string
	dxcArgs     string
	jobs        int
	verbose     bool
	disassemble bool
	describe    bool
	inputs      []string
}

func parseFlags(args []string) (*config, error) {
	cfg := &config{}
	fs := flag.NewFlagSet("shaderpack", flag.ContinueOnError)
	fs.StringVar(&cfg.output, "o", "", "output file, or directory for several inputs (default: stdout)")
	fs.StringVar(&cfg.stage, "stage", "vertex", "pipeline stage: vertex, fragment or compute")
	fs.StringVar(&cfg.model, "model", "default", "shader model, e.g. 5.1 or 6.6")
	fs.StringVar(&cfg.entry, "entry", shader.DefaultEntryPoint, "entry point")
	fs.StringVar(&cfg.target, "target", "native", "bytecode target: native or spirv")
	fs.StringVar(&cfg.opt, "O", "full", "optimization: none, size, performance or full")
	fs.StringVar(&cfg.lang, "lang", "", "source language: hlsl or wgsl (default: from extension)")
	fs.Var(&cfg.defines, "D", "preprocessor define NAME[=VALUE] (repeatable)")
	fs.Var(&cfg.includes, "I", "include directory (repeatable)")
	fs.BoolVar(&cfg.reflect, "reflect", true, "embed reflection")
	fs.BoolVar(&cfg.precompiled, "precompiled", false, "inputs are bytecode, skip compilation")
	fs.BoolVar(&cfg.werror, "Werror", false, "treat dxc warnings as errors")
	fs.StringVar(&cfg.dxc, "dxc", "dxc", "dxc executable")
	fs.StringVar(&cfg.dxcArgs, "dxc-args", "", "extra dxc arguments, shell quoted")
	fs.IntVar(&cfg.jobs, "j", runtime.NumCPU(), "parallel compiles")
	fs.BoolVar(&cfg.verbose, "v", false, "debug logging")
	fs.BoolVar(&cfg.disassemble, "S", false, "log disassembly (with -v)")
	fs.BoolVar(&cfg.describe, "describe", false, "print the contents of compiled resources")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: shaderpack [options] <input>...\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.inputs = fs.Args()
	if len(cfg.inputs) == 0 {
		fs.Usage()
		return nil, errors.New("no input file specified")
	}
	if cfg.jobs < 1 {
		cfg.jobs = 1
	}
	return cfg, nil
}

// policy builds the compile policy for one input.
func (cfg *config) policy(input string) (*shader.Policy, error) {
	stage, err := shader.ParseStage(cfg.stage)
	if err != nil {
		return nil, err
	}
	model, err := shader.ParseShaderModel(cfg.model)
	if err != nil {
		return nil, err
	}
	target, err := shader.ParseTarget(cfg.target)
	if err != nil {
		return nil, err
	}
	opt, err := shader.ParseOptimization(cfg.opt)
	if err != nil {
		return nil, err
	}

	p := shader.DefaultPolicy(stage)
	p.ShaderModel = model
	p.EntryPoint = cfg.entry
	p.Target = target
	p.Optimization = opt
	p.UseReflection = cfg.reflect
	if cfg.precompiled {
		p.Content = shader.ContentPrecompiledBinary
	}

	switch lang := strings.ToLower(cfg.lang); {
	case lang == "wgsl", lang == "" && strings.EqualFold(filepath.Ext(input), ".wgsl"):
		p.Language = shader.LanguageWGSL
	case lang == "hlsl", lang == "":
		p.Language = shader.LanguageHLSL
	default:
		return nil, fmt.Errorf("unknown language %q", cfg.lang)
	}

	for _, d := range cfg.defines {
		name, value, _ := strings.Cut(d, "=")
		p.Defines = append(p.Defines, shader.Define{Name: name, Value: value})
	}
	p.IncludePaths = append([]string{filepath.Dir(input)}, cfg.includes...)

	return p, p.Validate()
}

// needsDXC reports whether any input needs dxc. SPIR-V output from WGSL
// or from precompiled modules is produced by naga alone.
func (cfg *config) needsDXC() bool {
	for _, input := range cfg.inputs {
		p, err := cfg.policy(input)
		if err != nil {
			return true
		}
		if p.Target != shader.TargetCrossCompiled {
			return true
		}
		if p.Content == shader.ContentSource && p.Language != shader.LanguageWGSL {
			return true
		}
	}
	return false
}

// outputPath returns where the resource for input is written, or "" for
// stdout.
func (cfg *config) outputPath(input string) string {
	if len(cfg.inputs) == 1 {
		return cfg.output
	}
	return filepath.Join(cfg.output, filepath.Base(input)+outputExt)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func run(args []string) error {
	cfg, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	logger := newLogger(os.Stderr, cfg.verbose)

	if cfg.describe {
		return describe(os.Stdout, cfg.inputs)
	}

	if len(cfg.inputs) > 1 && cfg.output == "" {
		return errors.New("-o must name a directory when compiling several inputs")
	}
	if cfg.output == "" && term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("refusing to write binary output to a terminal; use -o")
	}

	extra, err := shlex.Split(cfg.dxcArgs)
	if err != nil {
		return fmt.Errorf("parse -dxc-args: %w", err)
	}

	opts := shaderpack.DefaultOptions()
	opts.DXCPath = cfg.dxc
	opts.Logger = logger
	opts.WarningsAsErrors = cfg.werror
	opts.Disassemble = cfg.disassemble
	opts.ExtraArgs = extra
	if !cfg.needsDXC() {
		opts.Toolchain = toolchain.NewNaga(toolchain.NagaOptions{Logger: logger})
	}

	compiler, err := shaderpack.New(opts)
	if err != nil {
		return err
	}

	if len(cfg.inputs) > 1 {
		if err := os.MkdirAll(cfg.output, 0o755); err != nil {
			return err
		}
	}

	var g errgroup.Group
	g.SetLimit(cfg.jobs)
	for _, input := range cfg.inputs {
		g.Go(func() error {
			return compileFile(compiler, cfg, input, logger)
		})
	}
	return g.Wait()
}

func compileFile(compiler *shaderpack.Compiler, cfg *config, input string, logger *slog.Logger) error {
	p, err := cfg.policy(input)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	source, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	res, err := compiler.Compile(input, p, string(source))
	if err != nil {
		return err
	}

	out := cfg.outputPath(input)
	if out == "" {
		_, err = os.Stdout.Write(res.Data)
		return err
	}
	if err := os.WriteFile(out, res.Data, 0o644); err != nil {
		return err
	}
	logger.Info("compiled", "input", input, "output", out, "size", res.Header.Size)
	return nil
}

func describe(w io.Writer, inputs []string) error {
	for i, input := range inputs {
		data, err := os.ReadFile(input)
		if err != nil {
			return err
		}
		s, err := shaderpack.Decode(data)
		if err != nil {
			return fmt.Errorf("%s: %w", input, err)
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s:\n", input)
		if err := s.Describe(w); err != nil {
			return err
		}
	}
	return nil
}
