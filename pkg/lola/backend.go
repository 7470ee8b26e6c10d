package lola

import (
	"context"
	"io"
	"net"
	"time"

	"github.com/teslashibe/go-nidhogg/internal/log"
	"github.com/teslashibe/go-nidhogg/pkg/nao"
	"github.com/teslashibe/go-nidhogg/pkg/robot"
)

// DefaultSocketPath is where the LoLA daemon listens on the robot.
const DefaultSocketPath = "/tmp/robocup"

// Backend talks to the LoLA daemon over its unix socket. It owns the socket
// exclusively and is not safe for concurrent use. No read or write deadlines
// are set: if the daemon hangs, so does the call.
type Backend struct {
	conn io.ReadWriteCloser
	path string
}

var _ robot.InfoBackend = (*Backend)(nil)

// Connect opens DefaultSocketPath once.
func Connect() (*Backend, error) {
	return ConnectPath(DefaultSocketPath)
}

// ConnectPath opens the socket at path once.
func ConnectPath(path string) (*Backend, error) {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, newError("connect", KindTransportUnavailable, path, err)
	}
	log.Debug("lola socket open", "path", path)
	return &Backend{conn: conn, path: path}, nil
}

// ConnectWithRetry opens DefaultSocketPath, retrying up to retries times.
func ConnectWithRetry(ctx context.Context, retries int, interval time.Duration) (*Backend, error) {
	return ConnectPathWithRetry(ctx, DefaultSocketPath, retries, interval)
}

// ConnectPathWithRetry opens the socket at path, retrying up to retries times.
func ConnectPathWithRetry(ctx context.Context, path string, retries int, interval time.Duration) (*Backend, error) {
	conn := robot.NewConnection("lola", func() (*Backend, error) {
		return ConnectPath(path)
	})
	return conn.ConnectWithRetry(ctx, retries, interval)
}

// NewBackend wraps an already open stream, e.g. one end of a net.Pipe.
func NewBackend(rw io.ReadWriteCloser) *Backend {
	return &Backend{conn: rw}
}

// SendControl writes one control frame.
func (b *Backend) SendControl(msg nao.ControlMessage) error {
	if b.conn == nil {
		return newError("write control", KindTransport, "not connected", nil)
	}
	return WriteControl(b.conn, msg)
}

// ReadFrame blocks for the next state frame.
func (b *Backend) ReadFrame() (StateFrame, error) {
	if b.conn == nil {
		return StateFrame{}, newError("read state", KindTransport, "not connected", nil)
	}
	return ReadStateFrame(b.conn)
}

// ReadState blocks for the next state frame and returns its sensor values.
func (b *Backend) ReadState() (nao.State, error) {
	f, err := b.ReadFrame()
	if err != nil {
		return nao.State{}, err
	}
	return f.State(), nil
}

// ReadHardwareInfo consumes one state frame and returns the robot identity
// carried in it.
func (b *Backend) ReadHardwareInfo() (nao.HardwareInfo, error) {
	f, err := b.ReadFrame()
	if err != nil {
		return nao.HardwareInfo{}, err
	}
	return f.HardwareInfo(), nil
}

// Disconnect closes the socket. Further calls are no-ops.
func (b *Backend) Disconnect() error {
	if b.conn == nil {
		return nil
	}
	err := b.conn.Close()
	b.conn = nil
	if err != nil {
		return newError("disconnect", KindTransport, b.path, err)
	}
	log.Debug("lola socket closed", "path", b.path)
	return nil
}
