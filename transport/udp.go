package transport

import "net"

// UDPAdapter binds packet-level reads/writes to a UDP socket. Each
// datagram carries exactly one serialized Packet; grouping
// packets into a reassembled message is Wire's job, not this adapter's.
type UDPAdapter struct {
	Conn *net.UDPConn
}

func ListenUDP(addr string) (*UDPAdapter, error) {
	a, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", a)
	if err != nil {
		return nil, err
	}
	return &UDPAdapter{Conn: conn}, nil
}

// ReadPacket blocks for the next datagram, returning its bytes and sender.
// A fatal socket error (closed, etc.) is returned as err; there is no
// "partial" case for datagrams, unlike the TCP adapter.
func (a *UDPAdapter) ReadPacket(buf []byte) (data []byte, peer net.Addr, err error) {
	n, raddr, err := a.Conn.ReadFromUDP(buf)
	if err != nil {
		return nil, nil, err
	}
	out := make([]byte, n)
	copy(out, buf[:n])
	return out, raddr, nil
}

// WritePacket sends one serialized Packet to peer.
func (a *UDPAdapter) WritePacket(b []byte, peer net.Addr) error {
	udpPeer, ok := peer.(*net.UDPAddr)
	if !ok {
		return &net.AddrError{Err: "not a UDP address", Addr: peer.String()}
	}
	_, err := a.Conn.WriteToUDP(b, udpPeer)
	return err
}

func (a *UDPAdapter) Close() error { return a.Conn.Close() }

func (a *UDPAdapter) LocalAddr() net.Addr { return a.Conn.LocalAddr() }
