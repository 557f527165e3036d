// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package toolchain

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gogpu/shaderpack/shader"
)

var (
	includeDirective = regexp.MustCompile(`^\s*#\s*include\s*(?:"([^"]+)"|<([^>]+)>)`)
	pragmaOnce       = regexp.MustCompile(`^\s*#\s*pragma\s+once\b`)
)

// IncludeResolver locates included files.
//
// A name is first tried as a literal path, relative to the including file's
// directory. Each include path is then tried in registration order. The first
// existing regular file wins.
type IncludeResolver struct {
	paths []string
}

// NewIncludeResolver returns a resolver over paths. Empty and duplicate
// entries are dropped.
func NewIncludeResolver(paths []string) *IncludeResolver {
	p := &shader.Policy{IncludePaths: paths}
	return &IncludeResolver{paths: p.UniqueIncludePaths()}
}

// Paths returns the registered include paths.
func (r *IncludeResolver) Paths() []string {
	return r.paths
}

// Resolve returns the path of the file named by an #include directive.
// dir is the including file's directory; an empty dir means the working
// directory.
func (r *IncludeResolver) Resolve(name, dir string) (string, error) {
	native := filepath.FromSlash(strings.ReplaceAll(name, `\`, "/"))

	candidates := make([]string, 0, len(r.paths)+1)
	if filepath.IsAbs(native) {
		candidates = append(candidates, native)
	} else {
		candidates = append(candidates, filepath.Join(dir, native))
		for _, p := range r.paths {
			candidates = append(candidates, filepath.Join(p, native))
		}
	}

	for _, c := range candidates {
		info, err := os.Stat(c)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if abs, err := filepath.Abs(c); err == nil {
			return abs, nil
		}
		return filepath.Clean(c), nil
	}
	return "", shader.Errorf(shader.ErrCompileFailed, "include %q not found", name)
}

// Expand inlines every #include directive in source. Each inlined file is
// bracketed with #line markers so diagnostics keep their original positions.
// Files containing #pragma once are inlined at most once. An include cycle
// is an ErrCompileFailed error.
//
// filename names the source in #line markers and anchors relative includes;
// it may be empty for in-memory source.
func (r *IncludeResolver) Expand(source, filename string) (string, error) {
	e := &expander{
		resolver: r,
		once:     make(map[string]bool),
		active:   make(map[string]bool),
	}
	if filename != "" {
		abs, err := filepath.Abs(filename)
		if err == nil {
			filename = abs
		}
		e.active[filename] = true
	}

	var sb strings.Builder
	if err := e.expand(&sb, source, filename); err != nil {
		return "", err
	}
	return sb.String(), nil
}

type expander struct {
	resolver *IncludeResolver
	once     map[string]bool
	active   map[string]bool
}

func (e *expander) expand(sb *strings.Builder, source, filename string) error {
	dir := ""
	if filename != "" {
		dir = filepath.Dir(filename)
	}

	lines := strings.SplitAfter(source, "\n")
	for i, line := range lines {
		if pragmaOnce.MatchString(line) {
			if filename != "" {
				e.once[filename] = true
			}
			sb.WriteString("\n")
			continue
		}

		m := includeDirective.FindStringSubmatch(line)
		if m == nil {
			sb.WriteString(line)
			continue
		}

		name := m[1]
		if name == "" {
			name = m[2]
		}
		path, err := e.resolver.Resolve(name, dir)
		if err != nil {
			return err
		}
		if e.once[path] {
			sb.WriteString("\n")
			continue
		}
		if e.active[path] {
			return shader.Errorf(shader.ErrCompileFailed, "include cycle through %q", path)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return shader.WrapError(shader.ErrCompileFailed, "read include", err)
		}

		e.active[path] = true
		fmt.Fprintf(sb, "#line 1 %q\n", filepath.ToSlash(path))
		text := string(data)
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		if err := e.expand(sb, text, path); err != nil {
			return err
		}
		delete(e.active, path)

		fmt.Fprintf(sb, "#line %d %q\n", i+2, lineName(filename))
	}
	return nil
}

func lineName(filename string) string {
	if filename == "" {
		return "source"
	}
	return filepath.ToSlash(filename)
}
