package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"

	"github.com/aryanA101a/lc3-vm-go/vm"
)

func main() {
	var verbose bool
	var logFile string
	var entry string
	var fromOrigin bool
	var maxInstructions uint64

	flag.BoolVar(&verbose, "v", false, "Verbose mode, trace every instruction")
	flag.StringVar(&logFile, "log", "", "Write logs to this file instead of stderr")
	flag.StringVar(&entry, "entry", "0x3000", "Address of the first instruction")
	flag.BoolVar(&fromOrigin, "origin", false, "Start at the origin of the first image")
	flag.Uint64Var(&maxInstructions, "max", 0, "Stop after this many instructions, 0 for no limit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %v [flags] image-file1 ...\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	if len(logFile) != 0 {
		f, err := os.OpenFile(logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatalf("error opening file: %v", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	pc, err := strconv.ParseUint(entry, 0, 16)
	if err != nil {
		log.Fatalf("%v: bad entry address: %v", entry, err)
	}

	machine := vm.NewVM(
		vm.WithLogger(log.Default()),
		vm.WithVerbose(verbose),
		vm.WithMaxInstructions(maxInstructions),
	)

	for i, arg := range flag.Args() {
		origin, err := machine.LoadImageFile(arg)
		if err != nil {
			log.Fatalf("failed to load image: %v", err)
		}
		if i == 0 && fromOrigin {
			pc = uint64(origin)
		}
	}
	machine.SetPC(vm.Word(pc))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	done := make(chan error, 1)
	go func() {
		done <- machine.Start(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			if errors.Is(err, context.Canceled) {
				os.Exit(130)
			}
			log.Fatal(err)
		}
	case <-ctx.Done():
		// The machine may be blocked reading the keyboard.
		machine.Stop()
		fmt.Println()
		os.Exit(130)
	}
}
