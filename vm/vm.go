package vm

import (
	"context"
	goIO "io"
	"log"
	"os"
)

// VM is an LC-3 machine: memory, a CPU and the console it talks to.
type VM struct {
	memory  *Memory
	cpu     *cpu
	console *Console

	stdin           goIO.Reader
	stdout          goIO.Writer
	logger          *log.Logger
	verbose         bool
	maxInstructions uint64 // 0 means no limit
}

// Option configures a VM.
type Option func(*VM)

// WithStdin sets the keyboard input. Defaults to os.Stdin.
func WithStdin(r goIO.Reader) Option {
	return func(vm *VM) {
		vm.stdin = r
	}
}

// WithStdout sets the display output. Defaults to os.Stdout.
func WithStdout(w goIO.Writer) Option {
	return func(vm *VM) {
		vm.stdout = w
	}
}

// WithLogger sets the logger for diagnostics. Defaults to log.Default().
func WithLogger(logger *log.Logger) Option {
	return func(vm *VM) {
		vm.logger = logger
	}
}

// WithVerbose enables per-instruction tracing and terminal diagnostics.
func WithVerbose(verbose bool) Option {
	return func(vm *VM) {
		vm.verbose = verbose
	}
}

// WithMaxInstructions bounds the number of instructions Run executes.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) Option {
	return func(vm *VM) {
		vm.maxInstructions = max
	}
}

// NewVM creates a machine with zeroed memory, PC at UserSpaceStart and
// COND at FLAG_ZRO.
func NewVM(opts ...Option) *VM {
	vm := &VM{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		logger: log.Default(),
	}

	for _, opt := range opts {
		opt(vm)
	}

	vm.console = NewConsole(vm.stdin, vm.stdout)
	vm.memory = NewMemory(vm.console)
	vm.cpu = newCpu(vm.memory, vm.console, vm.console)
	vm.cpu.maxCycles = vm.maxInstructions

	if vm.verbose {
		vm.console.logger = vm.logger
		vm.cpu.trace = vm.logger
	}

	return vm
}

// Memory returns the machine's memory.
func (vm *VM) Memory() *Memory {
	return vm.memory
}

// Registers returns the machine's register file.
func (vm *VM) Registers() *RegisterFile {
	return vm.cpu.reg
}

// Console returns the machine's keyboard and display.
func (vm *VM) Console() *Console {
	return vm.console
}

// Cycles returns the number of instructions executed so far.
func (vm *VM) Cycles() uint64 {
	return vm.cpu.cycles
}

// SetPC sets the address of the first instruction to fetch.
func (vm *VM) SetPC(addr Word) {
	vm.cpu.reg.Write(PC, addr)
}

// Start runs the machine with the terminal in raw mode, restoring it when
// the machine stops.
func (vm *VM) Start(ctx context.Context) (err error) {
	if err = vm.console.EnableRawMode(); err != nil {
		return
	}
	defer func() {
		rerr := vm.console.DisableRawMode()
		if err == nil {
			err = rerr
		}
	}()

	return vm.Run(ctx)
}

// Run executes instructions until a HALT trap, which returns nil, an
// unsupported opcode or trap, or ctx being done.
func (vm *VM) Run(ctx context.Context) error {
	err := vm.cpu.run(ctx)

	if ferr := vm.console.Flush(); err == nil {
		err = ferr
	}

	if vm.verbose {
		if err != nil {
			vm.logger.Printf("stopped after %d instructions: %v", vm.cpu.cycles, err)
		} else {
			vm.logger.Printf("HALT after %d instructions", vm.cpu.cycles)
		}
	}

	return err
}

// Stop restores the terminal. It may be called from another goroutine
// while Start is blocked on input.
func (vm *VM) Stop() {
	if err := vm.console.DisableRawMode(); err != nil {
		vm.logger.Printf("failed to restore terminal: %v", err)
	}
}
