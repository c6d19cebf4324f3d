package vm

import (
	"encoding/binary"
	"fmt"
	goIO "io"
	"os"
)

// LoadImage reads a program image from r into memory and returns its
// origin. The image is a big-endian origin word followed by the words to
// place at origin, origin+1, and so on.
func (vm *VM) LoadImage(r goIO.Reader) (origin Word, err error) {
	file, err := goIO.ReadAll(r)
	if err != nil {
		return
	}

	origin, words, err := parseImage(file)
	if err != nil {
		return
	}

	if vm.verbose {
		vm.logger.Printf("Size: %0.2f KB, origin 0x%04x", float32(len(file))/1024, origin)
	}

	vm.memory.Load(origin, words)
	return
}

// LoadImageFile loads the program image stored at path.
func (vm *VM) LoadImageFile(path string) (origin Word, err error) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	origin, err = vm.LoadImage(file)
	if err != nil {
		err = fmt.Errorf("%v: %w", path, err)
	}
	return
}

func parseImage(file []byte) (origin Word, words []Word, err error) {
	if len(file) < 4 {
		err = ErrImageTooShort
		return
	}
	if len(file)%2 != 0 {
		err = ErrImageOddLength
		return
	}

	/* origin tells us where in memory to place the image, the words are
	stored big endian as the architecture defines */
	origin = Word(binary.BigEndian.Uint16(file))
	words = make([]Word, len(file)/2-1)
	if int(origin)+len(words) > MemorySize {
		err = ErrImageTooLarge
		return
	}

	for i := range words {
		words[i] = Word(binary.BigEndian.Uint16(file[2+2*i:]))
	}
	return
}
