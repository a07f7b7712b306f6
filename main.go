//go:build !js

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrogolib/buildinfo"

	"gochip8/pkg/asm"
	"gochip8/pkg/chip8"
	"gochip8/pkg/emulator"
	"gochip8/pkg/utils"
)

// Set by the linker.
var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	inPath := flag.String("in", "", "input assembly file path")
	outPath := flag.String("out", "", "output binary file path (default: input with .ch8 extension)")
	disPath := flag.String("dis", "", "disassemble a program image to stdout")
	runProgram := flag.Bool("run", false, "run the assembled output headless")
	runBinPath := flag.String("run-bin", "", "run an existing program headless")
	cycles := flag.Int("cycles", 10000, "instructions to execute when running headless")
	hz := flag.Int("hz", emulator.DefaultCycleHz, "instruction rate used to pace the timers when running headless")
	screenshot := flag.String("screenshot", "", "write the final display to this PNG file after a headless run")
	verbose := flag.Bool("v", false, "log every executed instruction to stderr")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(buildinfo.Version(version, commit, date))
		return
	}

	if *runProgram && *runBinPath != "" {
		fmt.Fprintln(os.Stderr, "use either -run or -run-bin, not both")
		os.Exit(2)
	}
	if *inPath == "" && *disPath == "" && *runBinPath == "" && !*runProgram {
		fmt.Fprintln(os.Stderr, "nothing to do: provide -in to assemble, -dis to disassemble, -run to run assembled output, or -run-bin <file> to run an existing program")
		flag.Usage()
		os.Exit(2)
	}

	assembledOutput := ""
	if *inPath != "" {
		output := *outPath
		if output == "" {
			output = defaultOutputPath(*inPath)
		}
		n, err := assembleFile(*inPath, output)
		if err != nil {
			log.Fatalf("assembly failed: %v", err)
		}
		fmt.Printf("assembled %d bytes -> %s\n", n, output)
		assembledOutput = output
	}

	if *disPath != "" {
		if err := disassembleFile(os.Stdout, *disPath); err != nil {
			log.Fatalf("disassembly failed: %v", err)
		}
	}

	runTarget := ""
	switch {
	case *runBinPath != "":
		runTarget = *runBinPath
	case *runProgram:
		if assembledOutput == "" {
			fmt.Fprintln(os.Stderr, "-run requires -in, or use -run-bin <file>")
			os.Exit(2)
		}
		runTarget = assembledOutput
	default:
		return
	}

	logger := slog.New(slog.DiscardHandler)
	if *verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	program, err := utils.LoadProgram(runTarget)
	if err != nil {
		log.Fatalf("run failed for %q: %v", runTarget, err)
	}
	m, runErr := runHeadless(program, *cycles, *hz, logger)
	fmt.Printf("run complete (%s): %s\n", runTarget, stateLine(m.State()))

	if *screenshot != "" {
		if err := m.Frame().SaveScreenshot(*screenshot, 8); err != nil {
			log.Fatalf("failed to save screenshot: %v", err)
		}
		fmt.Printf("screenshot -> %s\n", *screenshot)
	}
	if runErr != nil {
		log.Fatalf("run failed for %q: %v", runTarget, runErr)
	}
}

func defaultOutputPath(inPath string) string {
	ext := filepath.Ext(inPath)
	if ext == "" {
		return inPath + ".ch8"
	}
	return strings.TrimSuffix(inPath, ext) + ".ch8"
}

// assembleFile assembles the source at in and writes the program image to out.
func assembleFile(in, out string) (int, error) {
	fullPath, _, err := utils.GetPathInfo(in)
	if err != nil {
		return 0, err
	}
	source, err := os.ReadFile(fullPath)
	if err != nil {
		return 0, err
	}
	code, _, err := asm.Assemble(string(source))
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(out, code, 0o644); err != nil {
		return 0, err
	}
	return len(code), nil
}

func disassembleFile(w io.Writer, path string) error {
	program, err := utils.LoadProgram(path)
	if err != nil {
		return err
	}
	for _, line := range chip8.Disassemble(program, chip8.ProgramStart) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// runHeadless executes up to cycles instructions with no display, sound or
// keys attached. The timers tick once per hz/60 instructions. The machine is
// returned even when it halts so its state can be reported.
func runHeadless(program []byte, cycles, hz int, logger *slog.Logger) (*chip8.Machine, error) {
	m := chip8.New(chip8.Config{Logger: logger})
	if err := m.LoadProgram(program); err != nil {
		return m, err
	}
	emu := emulator.New(m, emulator.Options{CycleHz: hz, Logger: logger})

	perTick := max(hz/chip8.TimerHz, 1)
	for i := 1; i <= cycles; i++ {
		if err := emu.Step(); err != nil {
			return m, err
		}
		if i%perTick == 0 {
			m.TickTimers()
		}
	}
	return m, nil
}

func stateLine(s chip8.State) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PC=0x%03X I=0x%03X DT=%d ST=%d SP=%d", s.PC, s.I, s.Delay, s.Sound, len(s.Stack))
	for i, v := range s.V {
		fmt.Fprintf(&sb, " V%X=0x%02X", i, v)
	}
	if s.AwaitingKey {
		sb.WriteString(" awaiting-key")
	}
	if s.Halted {
		sb.WriteString(" halted")
	}
	return sb.String()
}
