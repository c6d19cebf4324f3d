package vm

import (
	"bufio"
	"errors"
	goIO "io"
	"log"
	"os"
	"sync"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Console is the keyboard and display of the machine. Output is buffered
// and flushed before every blocking keyboard read.
type Console struct {
	in  *bufio.Reader
	out *bufio.Writer

	fd int // terminal file descriptor, -1 if input is not a terminal

	// terminal guards originalTerminalConfig and raw, Stop restores the
	// terminal from another goroutine.
	terminal               sync.Mutex
	originalTerminalConfig unix.Termios
	raw                    bool

	logger *log.Logger // nil disables logging
}

// NewConsole returns a console reading keys from in and writing characters
// to out.
func NewConsole(in goIO.Reader, out goIO.Writer) *Console {
	c := &Console{
		in:  bufio.NewReader(in),
		out: bufio.NewWriter(out),
		fd:  -1,
	}
	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		c.fd = int(file.Fd())
	}
	return c
}

// ReadKey blocks for one byte of input. End of input, or a read error,
// reports no key.
func (c *Console) ReadKey() (byte, bool) {
	if err := c.out.Flush(); err != nil {
		c.logf("console: %v", err)
	}

	b, err := c.in.ReadByte()
	if err != nil {
		if !errors.Is(err, goIO.EOF) {
			c.logf("console: %v", err)
		}
		return 0, false
	}
	return b, true
}

func (c *Console) WriteByte(b byte) error {
	return c.out.WriteByte(b)
}

func (c *Console) Flush() error {
	return c.out.Flush()
}

// IsRaw reports whether the terminal is in raw mode.
func (c *Console) IsRaw() bool {
	c.terminal.Lock()
	defer c.terminal.Unlock()
	return c.raw
}

// IsTerminal reports whether keys come from an interactive terminal.
func (c *Console) IsTerminal() bool {
	return c.fd >= 0
}

// EnableRawMode turns off line buffering and echo on the terminal, so that
// keys reach the machine as they are typed. It does nothing when input is
// not a terminal.
func (c *Console) EnableRawMode() error {
	c.terminal.Lock()
	defer c.terminal.Unlock()

	if !c.IsTerminal() || c.raw {
		return nil
	}

	c.logf("enabling raw mode...")
	if err := termios.Tcgetattr(uintptr(c.fd), &c.originalTerminalConfig); err != nil {
		return err
	}
	newTermios := c.originalTerminalConfig
	newTermios.Lflag &^= unix.ICANON | unix.ECHO
	if err := termios.Tcsetattr(uintptr(c.fd), termios.TCSANOW, &newTermios); err != nil {
		return err
	}

	c.raw = true
	return nil
}

// DisableRawMode restores the terminal settings saved by EnableRawMode.
// It is safe to call from any goroutine, and more than once.
func (c *Console) DisableRawMode() error {
	c.terminal.Lock()
	defer c.terminal.Unlock()

	if !c.raw {
		return nil
	}

	c.logf("disabling raw mode...")
	if err := termios.Tcsetattr(uintptr(c.fd), termios.TCSANOW, &c.originalTerminalConfig); err != nil {
		return err
	}

	c.raw = false
	return nil
}

func (c *Console) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}
