package controlsurface

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleConnOverNetPipe(t *testing.T) {
	d, _, _ := newTestDispatcher()
	s := NewServer(d, ResponsePlain)

	clientConn, serverConn := net.Pipe()
	go s.HandleConn(serverConn)

	_, err := clientConn.Write([]byte("RDS:PS TEST1234\n"))
	require.NoError(t, err)

	clientConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	reader := bufio.NewReader(clientConn)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, "OK")
	clientConn.Close()
}

func TestHandleConnOverPty(t *testing.T) {
	d, _, _ := newTestDispatcher()
	s := NewServer(d, ResponsePlain)

	ptyMaster, ptySlave, err := pty.Open()
	require.NoError(t, err)
	defer ptyMaster.Close()

	go s.HandleConn(ptySlave)

	_, err = ptyMaster.Write([]byte("RDS:PTY 99\n"))
	require.NoError(t, err)

	ptyMaster.SetReadDeadline(time.Now().Add(2 * time.Second))
	reader := bufio.NewReader(ptyMaster)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, "ERR")
}
