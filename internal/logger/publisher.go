package logger

import (
	"net"
)

// publisher owns the producer side of the rendezvous channel: an unconnected
// unixgram socket. Sends are fire-and-forget; when no broker is bound at the
// address the send errors and the payload is dropped, which is the intended
// degradation. The socket itself outlives any number of broker restarts.
type publisher struct {
	conn  *net.UnixConn
	raddr *net.UnixAddr
}

func openPublisher(address string) (*publisher, error) {
	// An empty local name autobinds in the abstract namespace (Linux), which
	// keeps the socket unconnected so sends never depend on the broker being
	// up at construction time.
	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Net: "unixgram"})
	if err != nil {
		return nil, err
	}
	return &publisher{
		conn:  conn,
		raddr: &net.UnixAddr{Name: address, Net: "unixgram"},
	}, nil
}

func (p *publisher) send(payload []byte) error {
	_, err := p.conn.WriteToUnix(payload, p.raddr)
	return err
}

func (p *publisher) close() error {
	return p.conn.Close()
}
