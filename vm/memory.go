package vm

const MemorySize = 1 << 16

const (
	TrapVectorTableStart       = 0x0000
	InterruptVectorTableStart  = 0x0100
	SystemSpaceStart           = 0x0200
	UserSpaceStart             = 0x3000
	MemoryMappedRegistersStart = 0xFE00
)

// memory mapped register addresses
const (
	KBSR Word = MemoryMappedRegistersStart          /* keyboard status register */
	KBDR Word = MemoryMappedRegistersStart + 0x0002 /* keyboard data register */
)

const kbsrReady Word = 1 << 15

// Keyboard is the input device behind KBSR/KBDR and the GETC/IN traps.
type Keyboard interface {
	// ReadKey blocks until one byte of input is available. ok is false
	// once the input is exhausted.
	ReadKey() (key byte, ok bool)
}

// Memory is the flat 16-bit address space. Reading KBSR polls the keyboard;
// every other cell is plain storage.
type Memory struct {
	cells    [MemorySize]Word
	keyboard Keyboard
}

// NewMemory returns zeroed memory polling kbd. kbd may be nil, in which
// case the keyboard never has data.
func NewMemory(kbd Keyboard) *Memory {
	return &Memory{keyboard: kbd}
}

func (mem *Memory) Read(addr Word) Word {
	if addr == KBSR {
		mem.pollKeyboard()
	}
	return mem.cells[addr]
}

// Write stores value at addr. Device registers are writable too.
func (mem *Memory) Write(addr, value Word) {
	mem.cells[addr] = value
}

// Load copies words into consecutive cells starting at origin and returns
// the number of words copied. Words that would run past the top of memory
// are dropped.
func (mem *Memory) Load(origin Word, words []Word) int {
	return copy(mem.cells[origin:], words)
}

func (mem *Memory) pollKeyboard() {
	if mem.keyboard == nil {
		mem.cells[KBSR] = 0
		return
	}

	key, ok := mem.keyboard.ReadKey()
	if ok {
		mem.cells[KBSR] = kbsrReady
		mem.cells[KBDR] = Word(key)
	} else {
		mem.cells[KBSR] = 0
	}
}
