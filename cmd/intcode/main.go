// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"fmt"
	"iter"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/ezrec/intcode/amplifier"
	"github.com/ezrec/intcode/config"
	"github.com/ezrec/intcode/cpu"
	"github.com/ezrec/intcode/emulator"
	"github.com/ezrec/intcode/translate"
)

var log = commonlog.GetLogger("intcode")

// parseValues parses a comma separated list of integers.
func parseValues(text string) (values []int64, err error) {
	for _, word := range strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == ' ' }) {
		var value int64
		value, err = strconv.ParseInt(word, 0, 64)
		if err != nil {
			return
		}
		values = append(values, value)
	}
	return
}

// loadProgram reads the configured program as an image or assembly source.
func loadProgram(cfg *config.Config, defines iter.Seq2[string, string]) (prog *cpu.Program, err error) {
	path := cfg.ProgramPath()

	inf := os.Stdin
	if path != "-" {
		inf, err = os.Open(path)
		if err != nil {
			return
		}
		defer inf.Close()
	}

	switch cfg.ProgramFormat() {
	case config.FORMAT_ASM:
		asm := &cpu.Assembler{Verbose: cfg.Run.Verbose}
		for name, value := range defines {
			asm.Predefine(name, value)
		}
		for name, value := range cfg.Program.Defines {
			asm.Predefine(name, strconv.FormatInt(value, 10))
		}
		prog, err = asm.Parse(inf)
	default:
		prog, err = cpu.ParseImage(inf)
	}

	return
}

func fatalf(format string, args ...any) {
	log.Criticalf(format, args...)
	os.Exit(1)
}

func main() {
	var configFile string
	var compile string
	var mode string
	var inputs string
	var phases string
	var target int64
	var signalValue int64
	var concurrent bool
	var list bool
	var dump bool
	var verbose bool

	flag.StringVar(&configFile, "f", "", "intcode.toml run configuration")
	flag.StringVar(&compile, "c", "", "program to run (image, or .ic assembly)")
	flag.StringVar(&mode, "m", "", "mode: run, search, series, feedback")
	flag.StringVar(&inputs, "i", "", "comma separated inputs")
	flag.StringVar(&phases, "p", "", "comma separated amplifier phases")
	flag.Int64Var(&signalValue, "s", 0, "input signal to the first amplifier")
	flag.Int64Var(&target, "t", 0, "search target for cell 0")
	flag.BoolVar(&concurrent, "j", false, "run feedback stages concurrently")
	flag.BoolVar(&list, "l", false, "list the program, do not execute")
	flag.BoolVar(&dump, "d", false, "dump memory after running")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	verbosity := 0
	if verbose {
		verbosity = 1
	}
	commonlog.Configure(verbosity, nil)

	if flag.NArg() != 0 {
		fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	cfg := config.Default()
	var err error
	if len(configFile) != 0 {
		cfg, err = config.Load(configFile)
		if err != nil {
			fatalf("%v", err)
		}
	} else {
		var found *config.Config
		found, err = config.FindAndLoad(".")
		if err != nil {
			fatalf("%v", err)
		}
		if found != nil {
			cfg = found
		}
	}

	// Flags override the configuration file.
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "c":
			cfg.Program.Path = compile
			cfg.Dir = ""
		case "m":
			cfg.Run.Mode = mode
		case "i":
			cfg.Run.Inputs, err = parseValues(inputs)
			if err != nil {
				fatalf("-i: %v", err)
			}
		case "p":
			cfg.Run.Phases, err = parseValues(phases)
			if err != nil {
				fatalf("-p: %v", err)
			}
		case "s":
			cfg.Run.Signal = signalValue
		case "t":
			cfg.Run.Target = target
		case "j":
			cfg.Run.Concurrent = concurrent
		case "v":
			cfg.Run.Verbose = verbose
		}
	})
	if err = cfg.Validate(); err != nil {
		fatalf("%v", err)
	}

	if cfg.Run.Verbose && !verbose {
		commonlog.Configure(1, nil)
	}

	if len(cfg.Program.Path) == 0 {
		fatalf("%v", translate.From("no program given"))
	}

	emu := emulator.NewEmulator()
	emu.Verbose = cfg.Run.Verbose

	emu.Program, err = loadProgram(cfg, emu.Defines())
	if err != nil {
		fatalf("%v: %v", cfg.Program.Path, err)
	}
	prog := emu.Program

	if list {
		for ip, text := range cpu.Disassemble(prog.Binary()) {
			fmt.Printf("%04d: %v\n", ip, text)
		}
		return
	}

	switch cfg.Run.Mode {
	case config.MODE_RUN:
		emu.Tape.Output = os.Stdout

		err = emu.Reset(cfg.Run.Inputs...)
		if err != nil {
			fatalf("%v", err)
		}
		for key, value := range cfg.Program.Patch {
			var addr int64
			addr, err = strconv.ParseInt(key, 0, 64)
			if err == nil {
				err = emu.Patch(addr, value)
			}
			if err != nil {
				fatalf("patch %v: %v", key, err)
			}
		}

		var result int64
		result, err = emu.Run()
		if err != nil {
			log.Errorf("%v", err)
			fmt.Fprint(os.Stderr, emu.Cpu.String())
			os.Exit(1)
		}
		log.Noticef("%v", translate.From("halted: cell 0 = %v, diagnostic = %v", translate.Number(result), translate.Number(emu.Diagnostic)))

		if dump {
			err = cpu.FormatImage(os.Stdout, emu.Cpu.Memory)
			if err != nil {
				fatalf("%v", err)
			}
		}
	case config.MODE_SEARCH:
		var answer int64
		answer, err = emu.Search(cfg.Run.Target)
		if err != nil {
			fatalf("%v", err)
		}
		fmt.Println(answer)
	case config.MODE_SERIES, config.MODE_FEEDBACK:
		chain := amplifier.NewChain(prog.Binary())
		chain.Verbose = cfg.Run.Verbose
		chain.Capacity = cfg.Run.Capacity

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		run := func(phases []int64) (int64, error) {
			return chain.Series(phases, cfg.Run.Signal)
		}
		if cfg.Run.Mode == config.MODE_FEEDBACK {
			run = func(phases []int64) (int64, error) {
				if cfg.Run.Concurrent {
					return chain.FeedbackConcurrent(ctx, phases, cfg.Run.Signal)
				}
				return chain.Feedback(phases, cfg.Run.Signal)
			}
		}

		var best int64
		var setting []int64
		best, setting, err = amplifier.Best(cfg.Run.Phases, run)
		if err != nil {
			fatalf("%v", err)
		}
		log.Noticef("%v", translate.From("best phase setting %v", setting))
		fmt.Println(best)
	}
}
