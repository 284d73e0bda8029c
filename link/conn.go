package link

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ErrReset will be returned from Command if the board reboots before
// acknowledging it.
var ErrReset = errors.New("controller reset")

// ErrTimeout is returned when the board does not acknowledge a command in time.
var ErrTimeout = errors.New("command timed out")

// Conn is a line oriented connection to the motor controller board.
//
// Commands are sent one at a time and each waits for an `ok` or
// `error:` reply. Everything else the board sends is returned by ReadLine.
type Conn struct {
	rw   io.ReadWriter
	scan *bufio.Scanner

	ackCh   chan struct{}
	resetCh chan struct{}
	closeCh chan struct{}
	closed  sync.Once

	// mx serializes raw writes; cmdMx allows one command in flight.
	mx    sync.Mutex
	cmdMx sync.Mutex

	// The board answers every command in order, so replies are matched
	// to commands by counting lines. A late reply to a command that
	// already timed out is discarded.
	ackMx      sync.Mutex
	wroteLines int64
	readLines  int64
	waiting    int64
	result     error

	timeout time.Duration
}

// NewConn creates a new Conn using the provided ReadWriter for data.
func NewConn(rw io.ReadWriter, timeout time.Duration) *Conn {
	return &Conn{
		rw:      rw,
		scan:    bufio.NewScanner(rw),
		ackCh:   make(chan struct{}, 1),
		resetCh: make(chan struct{}, 1),
		closeCh: make(chan struct{}),
		timeout: timeout,
	}
}

// Close will abort any in-progress command and close the
// underlying ReadWriter, if it implements io.Closer.
func (c *Conn) Close() error {
	var err error
	c.closed.Do(func() {
		close(c.closeCh)
		if closer, ok := c.rw.(io.Closer); ok {
			err = closer.Close()
		}
	})
	return err
}

func (c *Conn) isClosed() bool {
	select {
	case <-c.closeCh:
		return true
	default:
		return false
	}
}

func (c *Conn) write(p []byte) error {
	if c.isClosed() {
		return io.ErrClosedPipe
	}
	c.mx.Lock()
	_, err := c.rw.Write(p)
	c.mx.Unlock()
	return err
}

// Command sends a single line and waits for the board to acknowledge it.
func (c *Conn) Command(line string) error {
	if strings.ContainsAny(line, "\r\n") {
		return errors.Errorf("invalid command %q", line)
	}
	c.cmdMx.Lock()
	defer c.cmdMx.Unlock()

	// discard signals left over from a command that timed out
	for drained := false; !drained; {
		select {
		case <-c.ackCh:
		case <-c.resetCh:
		default:
			drained = true
		}
	}

	c.ackMx.Lock()
	c.wroteLines++
	c.waiting = c.wroteLines
	c.ackMx.Unlock()
	defer func() {
		c.ackMx.Lock()
		c.waiting = 0
		c.ackMx.Unlock()
	}()

	err := c.write([]byte(line + "\n"))
	if err != nil {
		c.ackMx.Lock()
		c.wroteLines--
		c.ackMx.Unlock()
		return errors.Wrapf(err, "write %q", line)
	}

	t := time.NewTimer(c.timeout)
	defer t.Stop()
	select {
	case <-c.closeCh:
		return io.ErrClosedPipe
	case <-c.resetCh:
		return ErrReset
	case <-t.C:
		return errors.Wrapf(ErrTimeout, "%q", line)
	case <-c.ackCh:
		c.ackMx.Lock()
		err = c.result
		c.ackMx.Unlock()
		return errors.Wrapf(err, "%q", line)
	}
}

// WriteByte will write directly to the board without waiting
// for acknowledgement.
//
// Use for realtime commands like `?`.
func (c *Conn) WriteByte(p byte) error {
	return c.write([]byte{p})
}

// ReadLine will read the next line from the board. Acknowledgements and
// boot banners are dispatched to a waiting Command before being returned.
func (c *Conn) ReadLine() (string, error) {
	if c.isClosed() {
		return "", io.ErrClosedPipe
	}
	if !c.scan.Scan() {
		err := c.scan.Err()
		if err == nil {
			err = io.EOF
		}
		return "", err
	}
	data := bytes.TrimSpace(c.scan.Bytes())

	switch {
	case bytes.Equal(data, []byte("ok")):
		c.ack(nil)
	case bytes.HasPrefix(data, []byte("error:")):
		c.ack(errors.New(strings.TrimSpace(string(data))))
	case bytes.HasPrefix(data, []byte("Turret")):
		// a rebooted board will never answer what was sent before
		c.ackMx.Lock()
		c.readLines = c.wroteLines
		c.ackMx.Unlock()
		select {
		case c.resetCh <- struct{}{}:
		default:
		}
	}

	return string(data), nil
}

func (c *Conn) ack(err error) {
	c.ackMx.Lock()
	defer c.ackMx.Unlock()
	if c.readLines >= c.wroteLines {
		// unsolicited
		return
	}
	c.readLines++
	if c.readLines != c.waiting {
		return
	}
	c.result = err
	select {
	case c.ackCh <- struct{}{}:
	default:
	}
}
