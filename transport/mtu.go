package transport

// Safe datagram MTU classes: the Encoder's maxPacketSize is chosen from
// this small set rather than probed via path-MTU discovery, which this
// layer deliberately avoids.
const (
	MTUIPv4     = 508   // RFC 791 worst case minus IP/UDP headers, fragmentation-safe
	MTUIPv6     = 1212  // IPv6 minimum link MTU (1280) minus headers
	MTULoopback = 65507 // max UDP payload, safe to use on loopback-only deployments
)

// MTUEthernetClass is the default TCP stream MTU: an Ethernet-frame-class
// value, well under the common 1500-byte link MTU once IP/TCP headers are
// subtracted.
const MTUEthernetClass = 1400

func MTUForClass(class string) int {
	switch class {
	case "ipv6":
		return MTUIPv6
	case "loopback":
		return MTULoopback
	default:
		return MTUIPv4
	}
}
