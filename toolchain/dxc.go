// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package toolchain

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gogpu/shaderpack/shader"
)

// DefaultDXCPath is the executable name searched on PATH.
const DefaultDXCPath = "dxc"

// DXCOptions configures a DXC toolchain.
type DXCOptions struct {
	// Path is the dxc executable. Bare names are searched on PATH.
	Path string

	// WarningsAsErrors adds -WX to every compile.
	WarningsAsErrors bool

	// ExtraArgs are appended after the generated arguments.
	ExtraArgs []string

	// Logger receives warnings and argument lists. Nil means slog.Default().
	Logger *slog.Logger
}

// DXC compiles HLSL with the external dxc executable.
type DXC struct {
	path   string
	flags  Flags
	logger *slog.Logger
}

// NewDXC locates the dxc executable. A missing executable is an
// ErrToolchainUnavailable error.
func NewDXC(opts DXCOptions) (*DXC, error) {
	path := opts.Path
	if path == "" {
		path = DefaultDXCPath
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, shader.WrapError(shader.ErrToolchainUnavailable, "locate "+path, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DXC{
		path: resolved,
		flags: Flags{
			WarningsAsErrors: opts.WarningsAsErrors,
			Extra:            append([]string(nil), opts.ExtraArgs...),
		},
		logger: logger,
	}, nil
}

// Name implements Toolchain.
func (d *DXC) Name() string {
	return "dxc"
}

// Path returns the resolved executable path.
func (d *DXC) Path() string {
	return d.path
}

// Compile implements Toolchain. Includes are expanded before the source is
// written to a private temporary directory, which is removed on return.
func (d *DXC) Compile(p *shader.Policy, source string) (*shader.Bytecode, error) {
	args, err := Arguments(p, d.flags)
	if err != nil {
		return nil, err
	}
	if p.Language != shader.LanguageHLSL {
		return nil, shader.Errorf(shader.ErrInvalidPolicy, "dxc cannot compile %s source", p.Language)
	}

	expanded, err := NewIncludeResolver(p.UniqueIncludePaths()).Expand(source, "")
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "shaderpack-dxc-")
	if err != nil {
		return nil, shader.WrapError(shader.ErrCompileFailed, "create temp dir", err)
	}
	defer os.RemoveAll(dir)

	srcPath := filepath.Join(dir, "shader.hlsl")
	outPath := filepath.Join(dir, "shader.bin")
	if err := os.WriteFile(srcPath, []byte(expanded), 0o600); err != nil {
		return nil, shader.WrapError(shader.ErrCompileFailed, "write source", err)
	}

	args = append(args, "-Fo", outPath, srcPath)
	d.logger.Debug("running dxc", "path", d.path, "args", args)

	diagnostics, err := d.run(args...)
	if err != nil {
		return nil, shader.CompileError(fmt.Sprintf("dxc %s: %v", p.EntryPoint, err), diagnostics)
	}

	code, err := os.ReadFile(outPath)
	if err != nil || len(code) == 0 {
		return nil, shader.CompileError("dxc produced no bytecode for "+p.EntryPoint, diagnostics)
	}
	if diagnostics != "" {
		d.logger.Warn("dxc reported diagnostics", "entry", p.EntryPoint, "diagnostics", diagnostics)
	}

	return &shader.Bytecode{Code: code, Target: p.Target, Diagnostics: diagnostics}, nil
}

// Disassemble implements Toolchain. Native containers are dumped with
// dxc -dumpbin; SPIR-V uses the built-in disassembler.
func (d *DXC) Disassemble(b *shader.Bytecode) (string, error) {
	if b.Empty() {
		return "", shader.NewError(shader.ErrReflectionFailed, "no bytecode to disassemble")
	}
	if b.Target == shader.TargetCrossCompiled {
		return disassembleSPIRV(b.Code)
	}

	dir, err := os.MkdirTemp("", "shaderpack-dxc-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	binPath := filepath.Join(dir, "shader.bin")
	if err := os.WriteFile(binPath, b.Code, 0o600); err != nil {
		return "", err
	}
	out, err := d.run("-dumpbin", binPath)
	if err != nil {
		return "", fmt.Errorf("dxc -dumpbin: %w\n%s", err, out)
	}
	return out, nil
}

// run executes dxc and returns its combined, trimmed output.
func (d *DXC) run(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := exec.Command(d.path, args...) //nolint:gosec // G204: path resolved by LookPath, args built by Arguments
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return strings.TrimSpace(out.String()), err
}
