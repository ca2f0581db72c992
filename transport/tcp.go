package transport

import "net"

// DefaultSentinel is the byte sequence that follows every serialized
// packet on a TCP stream.
var DefaultSentinel = []byte("</>")

// TCPStreamAdapter frames one serialized Packet per sentinel-delimited
// chunk on an accepted TCP connection.
type TCPStreamAdapter struct {
	conn     net.Conn
	delim    *Delimiter
	sentinel []byte
	readBuf  []byte
	pending  [][]byte // frames decoded ahead of the caller draining them
}

func NewTCPStreamAdapter(conn net.Conn, sentinel []byte, ringSize int) *TCPStreamAdapter {
	if sentinel == nil {
		sentinel = DefaultSentinel
	}
	return &TCPStreamAdapter{
		conn:     conn,
		delim:    NewDelimiter(sentinel, ringSize),
		sentinel: sentinel,
		readBuf:  make([]byte, 4096),
	}
}

// ReadFrame blocks, performing as many underlying reads as necessary,
// until one full sentinel-delimited frame is available. It returns a
// fatal socket error (io.EOF on clean close) when the connection dies --
// a condition that terminates the owning association.
func (a *TCPStreamAdapter) ReadFrame() ([]byte, error) {
	if f, ok := a.drainPending(); ok {
		return f, nil
	}
	for {
		n, err := a.conn.Read(a.readBuf)
		if n > 0 {
			if chunks := a.delim.Feed(a.readBuf[:n]); len(chunks) > 0 {
				a.pending = append(a.pending, chunks...)
				f, _ := a.drainPending()
				return f, nil
			}
		}
		if err != nil {
			return nil, err
		}
	}
}

// drainPending pops a frame produced by an earlier Feed call that yielded
// more than one complete chunk at once.
func (a *TCPStreamAdapter) drainPending() ([]byte, bool) {
	if len(a.pending) == 0 {
		return nil, false
	}
	f := a.pending[0]
	a.pending = a.pending[1:]
	return f, true
}

// WriteFrame writes one serialized packet followed by the sentinel.
func (a *TCPStreamAdapter) WriteFrame(b []byte) error {
	if _, err := a.conn.Write(b); err != nil {
		return err
	}
	_, err := a.conn.Write(a.sentinel)
	return err
}

func (a *TCPStreamAdapter) Close() error         { return a.conn.Close() }
func (a *TCPStreamAdapter) RemoteAddr() net.Addr { return a.conn.RemoteAddr() }
