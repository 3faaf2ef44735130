package session

import "context"
import "time"

import "github.com/pkg/errors"
import "go.nanomsg.org/mangos/v3"
import "go.nanomsg.org/mangos/v3/protocol/pair"

import _ "go.nanomsg.org/mangos/v3/transport/inproc"
import _ "go.nanomsg.org/mangos/v3/transport/ipc"
import _ "go.nanomsg.org/mangos/v3/transport/tcp"

// RecvDeadline bounds every receive so the loops stay responsive
const RecvDeadline = 100 * time.Millisecond

// ErrTimeout is returned by Recv when no message arrived within the deadline
var ErrTimeout = errors.New("receive timeout")

// Conn is a message oriented duplex connection to exactly one peer
type Conn interface {
	Send(msg []byte) error
	Recv() ([]byte, error)
	Close() error
}

type socket struct {
	sock mangos.Socket
}

func (s *socket) Send(msg []byte) error {
	return errors.Wrap(s.sock.Send(msg), "send")
}

func (s *socket) Recv() ([]byte, error) {
	msg, err := s.sock.Recv()
	if errors.Is(err, mangos.ErrRecvTimeout) {
		return nil, ErrTimeout
	}
	return msg, errors.Wrap(err, "recv")
}

func (s *socket) Close() error {
	return s.sock.Close()
}

func open() (mangos.Socket, error) {
	sock, err := pair.NewSocket()
	if err != nil {
		return nil, errors.Wrap(err, "pair socket")
	}
	if err := sock.SetOption(mangos.OptionRecvDeadline, RecvDeadline); err != nil {
		sock.Close()
		return nil, errors.Wrap(err, "recv deadline")
	}
	return sock, nil
}

// Listen binds a pair socket to addr, e.g. tcp://127.0.0.1:60666, ipc:///tmp/dtrain or inproc://dtrain
func Listen(addr string) (Conn, error) {
	sock, err := open()
	if err != nil {
		return nil, err
	}
	if err := sock.Listen(addr); err != nil {
		sock.Close()
		return nil, errors.Wrapf(err, "listen %s", addr)
	}
	return &socket{sock}, nil
}

// Dial connects a pair socket to addr. The connection is established in the
// background, messages sent before are queued.
func Dial(addr string) (Conn, error) {
	sock, err := open()
	if err != nil {
		return nil, err
	}
	if err := sock.DialOptions(addr, map[string]interface{}{mangos.OptionDialAsynch: true}); err != nil {
		sock.Close()
		return nil, errors.Wrapf(err, "dial %s", addr)
	}
	return &socket{sock}, nil
}

// receive waits for the next message, treating timeouts as liveness ticks.
// It gives up when ctx is done.
func receive(ctx context.Context, conn Conn) ([]byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		msg, err := conn.Recv()
		if errors.Is(err, ErrTimeout) {
			continue
		}
		return msg, err
	}
}
