package vm_test

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aryanA101a/lc3-vm-go/vm"
)

// image builds a program image: origin followed by words, big endian.
func image(origin vm.Word, words ...vm.Word) []byte {
	buf := []byte{byte(origin >> 8), byte(origin)}
	for _, w := range words {
		buf = append(buf, byte(w>>8), byte(w))
	}
	return buf
}

var _ = Describe("VM", func() {
	var (
		machine *vm.VM
		stdin   *strings.Reader
		stdout  *bytes.Buffer
		logs    *bytes.Buffer
	)

	newMachine := func(input string, opts ...vm.Option) {
		stdin = strings.NewReader(input)
		stdout = &bytes.Buffer{}
		logs = &bytes.Buffer{}
		opts = append([]vm.Option{
			vm.WithStdin(stdin),
			vm.WithStdout(stdout),
			vm.WithLogger(log.New(logs, "", 0)),
			vm.WithMaxInstructions(1 << 20),
		}, opts...)
		machine = vm.NewVM(opts...)
	}

	run := func(words ...vm.Word) error {
		_, err := machine.LoadImage(bytes.NewReader(image(vm.UserSpaceStart, words...)))
		Expect(err).NotTo(HaveOccurred())
		return machine.Run(context.Background())
	}

	BeforeEach(func() {
		newMachine("")
	})

	Describe("NewVM", func() {
		It("should start at the user space origin with the zero flag", func() {
			Expect(machine.Registers().Read(vm.PC)).To(Equal(vm.Word(0x3000)))
			Expect(machine.Registers().Cond()).To(Equal(vm.FLAG_ZRO))
			Expect(machine.Cycles()).To(BeZero())
		})
	})

	Describe("Run", func() {
		It("should print a string and halt", func() {
			err := run(
				0xE002,            // LEA R0, MSG
				0xF022,            // PUTS
				0xF025,            // HALT
				'H', 'i', '\n', 0, // MSG
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(stdout.String()).To(Equal("Hi\n"))
			Expect(machine.Cycles()).To(Equal(uint64(3)))
		})

		It("should not execute anything after HALT", func() {
			err := run(
				0x1021, // ADD R0, R0, #1
				0xF025, // HALT
				0x1021, // ADD R0, R0, #1
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(machine.Registers().Read(vm.R0)).To(Equal(vm.Word(1)))
			Expect(machine.Registers().Read(vm.PC)).To(Equal(vm.Word(0x3002)))
		})

		It("should call and return from a subroutine", func() {
			err := run(
				0x1267, // ADD R1, R1, #7
				0x4802, // JSR DOUBLE
				0x3204, // ST R1, RESULT
				0xF025, // HALT
				0x1241, // DOUBLE ADD R1, R1, R1
				0xC1C0, // RET
				0x0000,
				0x0000, // RESULT
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(machine.Memory().Read(0x3007)).To(Equal(vm.Word(14)))
			Expect(machine.Registers().Read(vm.R7)).To(Equal(vm.Word(0x3002)))
		})

		It("should abort on RTI", func() {
			err := run(0x8000)
			Expect(errors.Is(err, vm.ErrOpcode{})).To(BeTrue())
			Expect(errors.Is(err, vm.ErrTrap{})).To(BeFalse())
		})

		It("should abort on the reserved opcode", func() {
			err := run(0xD000)
			var eo vm.ErrOpcode
			Expect(errors.As(err, &eo)).To(BeTrue())
			Expect(vm.Decode(eo.Instr)).To(Equal(vm.OP_RES))
		})

		It("should abort on an unsupported trap", func() {
			err := run(0xF0FF)
			var et vm.ErrTrap
			Expect(errors.As(err, &et)).To(BeTrue())
			Expect(et.Vector).To(Equal(vm.TrapVector(0xFF)))
			Expect(errors.Is(err, vm.ErrOpcode{})).To(BeFalse())
		})

		It("should stop at the instruction limit", func() {
			newMachine("", vm.WithMaxInstructions(10))
			err := run(0x0FFF) // BRnzp #-1
			Expect(err).To(MatchError(vm.ErrInstructionLimit))
			Expect(machine.Cycles()).To(Equal(uint64(10)))
		})

		It("should stop when the context is canceled", func() {
			_, err := machine.LoadImage(bytes.NewReader(image(vm.UserSpaceStart, 0x0FFF)))
			Expect(err).NotTo(HaveOccurred())

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			Expect(machine.Run(ctx)).To(MatchError(context.Canceled))
		})

		It("should start wherever the PC is set", func() {
			_, err := machine.LoadImage(bytes.NewReader(image(0x4000, 0xF025)))
			Expect(err).NotTo(HaveOccurred())
			machine.SetPC(0x4000)
			Expect(machine.Run(context.Background())).To(Succeed())
			Expect(machine.Cycles()).To(Equal(uint64(1)))
		})
	})

	Describe("Keyboard", func() {
		BeforeEach(func() {
			newMachine("abc")
		})

		It("should echo characters read with GETC until input runs out", func() {
			err := run(
				0xF020, // LOOP GETC
				0x0402, // BRz DONE
				0xF021, // OUT
				0x0FFC, // BRnzp LOOP
				0xF025, // DONE HALT
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(stdout.String()).To(Equal("abc"))
		})

		It("should echo characters read with IN", func() {
			err := run(
				0xF023, // IN
				0xF023, // IN
				0xF025, // HALT
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(stdout.String()).To(Equal("ab"))
			Expect(machine.Registers().Read(vm.R0)).To(Equal(vm.Word('b')))
		})

		It("should poll the keyboard through the status register", func() {
			err := run(
				0xA205,  // LOOP LDI R1, KBSRPTR
				0x0603,  // BRzp DONE
				0xA004,  // LDI R0, KBDRPTR
				0xF021,  // OUT
				0x0FFB,  // BRnzp LOOP
				0xF025,  // DONE HALT
				vm.KBSR, // KBSRPTR
				vm.KBDR, // KBDRPTR
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(stdout.String()).To(Equal("abc"))
			Expect(machine.Memory().Read(vm.KBSR)).To(BeZero())
		})
	})

	Describe("Verbose", func() {
		It("should trace instructions and report the halt", func() {
			newMachine("", vm.WithVerbose(true))
			err := run(
				0x5020, // AND R0, R0, #0
				0xF025, // HALT
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(logs.String()).To(ContainSubstring("0x3000 AND"))
			Expect(logs.String()).To(ContainSubstring("0x3001 TRAP"))
			Expect(logs.String()).To(ContainSubstring("HALT after 2 instructions"))
		})

		It("should stay quiet by default", func() {
			Expect(run(0xF025)).To(Succeed())
			Expect(logs.String()).To(BeEmpty())
		})
	})
})
