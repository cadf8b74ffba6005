// Command vkd3d-shader-compile is the shader-translation-core CLI
// (spec §6 "CLI surface").
//
// Usage:
//
//	vkd3d-shader-compile [options] [input]
//
// Examples:
//
//	vkd3d-shader-compile shader.dxbc                  # Compile to stdout
//	vkd3d-shader-compile -o shader.spv shader.dxbc     # Compile to file
//	vkd3d-shader-compile --print-source-types          # List source types
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	vkd3dshader "github.com/gogpu/vkd3d-shader"
	"github.com/gogpu/vkd3d-shader/dxil"
)

var (
	target      = flag.String("b", "spirv-binary", "target format")
	bufferUAV   = flag.String("buffer-uav", "storage-buffer", "buffer-UAV lowering: buffer-texture|storage-buffer")
	output      = flag.String("o", "", "output file (default: stdout)")
	sourceType  = flag.String("x", "none", "source type: dxbc-tpf|none (none autodetects from the container)")
	stripDebug  = flag.Bool("strip-debug", false, "strip debug chunks before compiling")
	versionFlag = flag.Bool("V", false, "print version")
	dxilLib     = flag.String("dxil-lib", "", "path to the external DXIL-to-SPIR-V translator library, required for DXIL source")
	printSrc    = flag.Bool("print-source-types", false, "print supported source types and exit")
	printTgt    = flag.Bool("print-target-types", false, "print supported target types and exit")
)

// version returns the module version from build info.
func version() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return "dev"
}

func main() {
	flag.Usage = usage
	flag.StringVar(output, "output", "", "output file (default: stdout)")
	flag.BoolVar(versionFlag, "version", false, "print version")

	// The flag package stops at the first non-flag argument and treats
	// a literal "--" as the end of options, matching the GNU getopt
	// semantics §6 requires.
	flag.CommandLine.Parse(os.Args[1:])

	if *versionFlag {
		fmt.Printf("vkd3d-shader-compile version %s\n", version())
		return
	}
	if *printSrc {
		fmt.Println("dxbc-tpf\nnone")
		return
	}
	if *printTgt {
		fmt.Println("spirv-binary")
		return
	}
	if *target != "spirv-binary" {
		fmt.Fprintf(os.Stderr, "Error: unsupported target %q\n", *target)
		os.Exit(1)
	}
	if *bufferUAV != "buffer-texture" && *bufferUAV != "storage-buffer" {
		fmt.Fprintf(os.Stderr, "Error: unsupported --buffer-uav value %q\n", *bufferUAV)
		os.Exit(1)
	}

	inputPath := "-"
	if rest := flag.Args(); len(rest) > 0 {
		inputPath = rest[0]
	}

	source, err := readInput(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}

	spirvBytes, err := compile(source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compilation error: %v\n", err)
		os.Exit(1)
	}

	if *output != "" {
		if err := os.WriteFile(*output, spirvBytes, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Successfully compiled %s to %s (%d bytes)\n", inputPath, *output, len(spirvBytes))
		return
	}
	if _, err := os.Stdout.Write(spirvBytes); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// compile dispatches source on its detected or forced source type.
// DXIL shaders (spec §4.7 "shader_is_dxil scans for a chunk tag DXIL")
// delegate to the external translator library named by -dxil-lib.
// Plain TPF shader bodies require an already-decoded instruction
// stream from an external token reader (spec §6); this CLI, with no
// such reader wired in, reports that boundary rather than guessing at
// a binary TPF decode the core itself never implements (spec §3 "TPF
// instruction decoding ... assumed to be a pre-existing token reader").
func compile(source []byte) ([]byte, error) {
	if *sourceType != "none" && *sourceType != "dxbc-tpf" {
		return nil, fmt.Errorf("unsupported source type %q", *sourceType)
	}

	pc, err := vkd3dshader.ParseDXBC(source)
	if err != nil {
		return nil, err
	}
	if *stripDebug {
		delete(pc.Chunks, "SDBB")
		delete(pc.Chunks, "SDBG")
	}
	if dxilBlob, ok := pc.Chunks["DXIL"]; ok {
		return compileDXIL(dxilBlob)
	}
	if pc.Code == nil {
		return nil, fmt.Errorf("container carries no SHEX/SHDR/DXIL code chunk")
	}
	return nil, fmt.Errorf("TPF instruction decoding requires an external tpf.InstructionReader; not wired into this CLI build")
}

func compileDXIL(blob []byte) ([]byte, error) {
	if *dxilLib == "" {
		return nil, fmt.Errorf("DXIL source requires -dxil-lib <path to translator library>")
	}
	d, err := dxil.NewDelegate(*dxilLib)
	if err != nil {
		return nil, err
	}
	return d.Compile(blob, dxil.RemapCallbacks{})
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: vkd3d-shader-compile [options] [input]\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  vkd3d-shader-compile shader.dxbc               Compile to stdout\n")
	fmt.Fprintf(os.Stderr, "  vkd3d-shader-compile -o shader.spv shader.dxbc Compile to file\n")
	fmt.Fprintf(os.Stderr, "  vkd3d-shader-compile --print-source-types      List source types\n")
}
