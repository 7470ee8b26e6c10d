package lola

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-nidhogg/pkg/nao"
)

// fakeDaemon plays the LoLA side of a socket: it sends one state frame, then
// waits for one control frame, until the peer hangs up.
func fakeDaemon(t *testing.T, conn net.Conn, frame StateFrame, controls chan<- nao.ControlMessage) {
	t.Helper()
	defer conn.Close()
	defer close(controls)

	out, err := EncodeStateFrame(frame)
	if err != nil {
		t.Errorf("encode state: %v", err)
		return
	}

	buf := make([]byte, 4096)
	for {
		if _, err := conn.Write(out[:]); err != nil {
			return
		}
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		msg, err := DecodeControl(buf[:n])
		if err != nil {
			t.Errorf("decode control: %v", err)
			return
		}
		controls <- msg
	}
}

func TestBackend_Pipe(t *testing.T) {
	client, server := net.Pipe()
	controls := make(chan nao.ControlMessage, 4)
	go fakeDaemon(t, server, knownFrame(), controls)

	b := NewBackend(client)
	defer b.Disconnect()

	state, err := b.ReadState()
	require.NoError(t, err)
	assert.Equal(t, knownFrame().State(), state)

	want := nao.BuildControl().Chest(nao.Blue).Position(state.Position).Build()
	require.NoError(t, b.SendControl(want))
	assert.Equal(t, want, <-controls)

	info, err := b.ReadHardwareInfo()
	require.NoError(t, err)
	assert.Equal(t, testHardware, info)
}

func TestBackend_UnixSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "robocup")
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	defer ln.Close()

	controls := make(chan nao.ControlMessage, 4)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		fakeDaemon(t, conn, knownFrame(), controls)
	}()

	b, err := ConnectPathWithRetry(context.Background(), path, 2, 5*time.Millisecond)
	require.NoError(t, err)

	f, err := b.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, testHardware, f.HardwareInfo())

	require.NoError(t, b.SendControl(nao.NewControlMessage()))
	got := <-controls
	assert.Equal(t, nao.NewControlMessage(), got)

	require.NoError(t, b.Disconnect())
	require.NoError(t, b.Disconnect())

	_, err = b.ReadState()
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, b.SendControl(nao.NewControlMessage()), ErrTransport)
}

func TestBackend_PeerDiesMidFrame(t *testing.T) {
	client, server := net.Pipe()
	go func() {
		buf, _ := EncodeStateFrame(knownFrame())
		server.Write(buf[:100])
		server.Close()
	}()

	b := NewBackend(client)
	defer b.Disconnect()

	_, err := b.ReadState()
	assert.ErrorIs(t, err, ErrFrameTruncated)
	assert.Contains(t, err.Error(), "got 100 of 896 bytes")
}

func TestConnectPath_Unavailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing")

	_, err := ConnectPath(path)
	assert.ErrorIs(t, err, ErrTransportUnavailable)

	start := time.Now()
	_, err = ConnectPathWithRetry(context.Background(), path, 3, 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrTransportUnavailable)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}
