// spvdis - SPIR-V disassembler
// Prints SPIR-V modules, or the SPIR-V bytecode of shaderpack resources,
// as .spvasm text.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/gogpu/shaderpack/resource"
	"github.com/gogpu/shaderpack/shader"
	"github.com/gogpu/shaderpack/spirv"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: spvdis <file.spv|file.shpk>...")
		return
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	for _, path := range os.Args[1:] {
		if err := disassembleFile(out, path); err != nil {
			out.Flush()
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", path, err)
			os.Exit(1)
		}
	}
}

func disassembleFile(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	code, err := spirvCode(data)
	if err != nil {
		return err
	}
	return spirv.Disassemble(code, w)
}

// spirvCode unwraps shaderpack resources; anything else is taken as a
// raw module.
func spirvCode(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, resource.Magic[:]) {
		return data, nil
	}
	s, err := resource.Decode(data)
	if err != nil {
		return nil, err
	}
	if s.Target != shader.TargetCrossCompiled {
		return nil, fmt.Errorf("resource holds %s bytecode, not SPIR-V", s.Target)
	}
	return s.Bytecode, nil
}
