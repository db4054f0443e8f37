package controlsurface

import (
	"io"

	"github.com/pkg/term"
)

// SerialTransport opens the control surface over a real serial line,
// exactly as src/serial_port.go opens the KISS TNC serial port: via
// github.com/pkg/term in raw mode.
type SerialTransport struct {
	port *term.Term
}

func OpenSerial(device string, baud int) (*SerialTransport, error) {
	t, err := term.Open(device, term.Speed(baud), term.RawMode)
	if err != nil {
		return nil, err
	}
	return &SerialTransport{port: t}, nil
}

func (s *SerialTransport) Close() error { return s.port.Close() }

// ServeSerial runs the line protocol over rw (e.g. an open SerialTransport's
// port), blocking until the
// port is closed or a read error occurs; intended to run on its own
// goroutine from the control surface's wiring, not the audio task.
func (s *Server) ServeSerial(rw io.ReadWriteCloser) {
	s.HandleConn(rw)
}
