package link

import (
	"github.com/pkg/errors"
	"github.com/tarm/serial"
)

// Open connects to the board on a serial port.
func Open(port string, baud int, cfg Config) (*Adapter, error) {
	p, err := serial.OpenPort(&serial.Config{
		Name: port,
		Baud: baud,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", port)
	}
	return NewAdapter(p, cfg), nil
}
