package wire

import (
	"errors"
	"fmt"
	"net/netip"
)

// MessageType identifies the kind of payload carried by a frame. Values are
// stable across the life of the protocol; adding a new kind means adding a
// new value, never renumbering an existing one.
type MessageType uint8

const (
	MsgWrite               MessageType = 0
	MsgRead                MessageType = 1
	MsgGetClientShardInfo  MessageType = 2
	MsgQueryVersion        MessageType = 3
	MsgGetVersion          MessageType = 4
	MsgAnnounceShard       MessageType = 5
	MsgGetSharedPeers      MessageType = 6
)

func (t MessageType) String() string {
	switch t {
	case MsgWrite:
		return "Write"
	case MsgRead:
		return "Read"
	case MsgGetClientShardInfo:
		return "GetClientShardInfo"
	case MsgQueryVersion:
		return "QueryVersion"
	case MsgGetVersion:
		return "GetVersion"
	case MsgAnnounceShard:
		return "AnnounceShard"
	case MsgGetSharedPeers:
		return "GetSharedPeers"
	default:
		return fmt.Sprintf("MessageType(%d)", uint8(t))
	}
}

func (t MessageType) valid() bool {
	return t <= MsgGetSharedPeers
}

// Role distinguishes the two kinds of shard that can announce themselves to
// the info server.
type Role uint8

const (
	RoleReader Role = 0
	RoleWriter Role = 1
)

func (r Role) String() string {
	if r == RoleWriter {
		return "Writer"
	}
	return "Reader"
}

// WriterSlotNone is the sentinel returned by AnnounceShard when a Writer
// announce arrives and every slot is already occupied. It is indistinguishable
// on the wire from a legitimate assignment unless callers know to check for
// it explicitly, so every call site that issues a Writer AnnounceShard must
// treat this value as an error.
const WriterSlotNone uint16 = 0xFFFF

// MaxPayloadSize bounds the payload portion of a frame. Decode rejects any
// frame whose declared length exceeds this, so a corrupt or hostile totlen
// cannot force an unbounded read.
const MaxPayloadSize = 4096

// Sentinel decode/encode errors. Callers distinguish these from ordinary I/O
// errors (io.EOF, net.Error) returned by the underlying connection.
var (
	ErrUnknownMessageType = errors.New("wire: unknown message type")
	ErrFrameTooShort      = errors.New("wire: totlen shorter than envelope")
	ErrPayloadTooLarge    = errors.New("wire: payload exceeds maximum size")
	ErrTruncatedPayload   = errors.New("wire: truncated payload")
	ErrMalformedPayload   = errors.New("wire: malformed payload")
)

// U128 is a 128-bit value stored big-endian internally (so it prints and
// compares the way a human expects) but written to the wire little-endian,
// matching every other multi-byte integer in the protocol. It is used both
// for shard_id and for the ip field, which is always a 16-byte IPv6 address.
type U128 [16]byte

// U128FromAddr packs an IPv6 address into the wire's u128 ip representation.
func U128FromAddr(addr netip.Addr) U128 {
	var u U128
	if addr.Is4() {
		a4 := addr.As4()
		mapped := netip.AddrFrom4(a4).As16()
		u = U128(mapped)
		return u
	}
	u = U128(addr.As16())
	return u
}

// Addr unpacks the u128 ip representation back into an IPv6 address.
func (u U128) Addr() netip.Addr {
	return netip.AddrFrom16(u)
}

// Endpoint is an IPv6 socket address: 128-bit address plus a 16-bit port.
// This is the unit of peer identity throughout the router and the info
// server's slot bookkeeping.
type Endpoint struct {
	IP   U128
	Port uint16
}

func (e Endpoint) AddrPort() netip.AddrPort {
	return netip.AddrPortFrom(e.IP.Addr(), e.Port)
}

func EndpointFromAddrPort(ap netip.AddrPort) Endpoint {
	return Endpoint{IP: U128FromAddr(ap.Addr()), Port: ap.Port()}
}

func (e Endpoint) String() string {
	return e.AddrPort().String()
}
