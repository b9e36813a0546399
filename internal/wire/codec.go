package wire

import (
	"encoding/binary"
	"unicode/utf8"
)

// writer accumulates a payload in wire order. Every multi-byte field is
// little-endian; string fields are u16-length-prefixed unless noted.
type writer struct {
	buf []byte
}

func (w *writer) u8(v uint8)   { w.buf = append(w.buf, v) }
func (w *writer) u16(v uint16) { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }
func (w *writer) u32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }
func (w *writer) u64(v uint64) { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }
// u128 writes v's bytes in reverse: U128 stores big-endian octets
// internally (so Addr()/U128FromAddr round-trip the way a human reads an
// address), but the wire's u128 is little-endian like every other integer
// field here, so the byte order flips at the boundary.
func (w *writer) u128(v U128) {
	for i := len(v) - 1; i >= 0; i-- {
		w.buf = append(w.buf, v[i])
	}
}

func (w *writer) str(s string) {
	w.u16(uint16(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *writer) endpoint(e Endpoint) {
	w.u128(e.IP)
	w.u16(e.Port)
}

func (w *writer) bytes() []byte { return w.buf }

// reader consumes a payload in wire order, returning ErrTruncatedPayload or
// ErrMalformedPayload as soon as a field cannot be satisfied.
type reader struct {
	buf []byte
	pos int
}

func newReader(buf []byte) *reader { return &reader{buf: buf} }

func (r *reader) remaining() int { return len(r.buf) - r.pos }

func (r *reader) take(n int) ([]byte, error) {
	if r.remaining() < n {
		return nil, ErrTruncatedPayload
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) u8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) u64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// u128 is u128's inverse: it reverses the little-endian wire bytes back
// into U128's big-endian internal representation.
func (r *reader) u128() (U128, error) {
	b, err := r.take(16)
	if err != nil {
		return U128{}, err
	}
	var u U128
	for i, j := 0, len(b)-1; j >= 0; i, j = i+1, j-1 {
		u[i] = b[j]
	}
	return u, nil
}

func (r *reader) str() (string, error) {
	n, err := r.u16()
	if err != nil {
		return "", err
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrMalformedPayload
	}
	return string(b), nil
}

func (r *reader) endpoint() (Endpoint, error) {
	ip, err := r.u128()
	if err != nil {
		return Endpoint{}, err
	}
	port, err := r.u16()
	if err != nil {
		return Endpoint{}, err
	}
	return Endpoint{IP: ip, Port: port}, nil
}

func (r *reader) finished() bool { return r.remaining() == 0 }

// --- Write ---

type WriteRequest struct {
	Key   string
	Value string
}

func (m WriteRequest) Encode() []byte {
	w := &writer{}
	w.str(m.Key)
	w.str(m.Value)
	return w.bytes()
}

func DecodeWriteRequest(payload []byte) (WriteRequest, error) {
	r := newReader(payload)
	key, err := r.str()
	if err != nil {
		return WriteRequest{}, err
	}
	val, err := r.str()
	if err != nil {
		return WriteRequest{}, err
	}
	return WriteRequest{Key: key, Value: val}, nil
}

type WriteResponse struct {
	Error uint8
}

func (m WriteResponse) Encode() []byte {
	w := &writer{}
	w.u8(m.Error)
	return w.bytes()
}

func DecodeWriteResponse(payload []byte) (WriteResponse, error) {
	r := newReader(payload)
	e, err := r.u8()
	if err != nil {
		return WriteResponse{}, err
	}
	return WriteResponse{Error: e}, nil
}

// --- Read ---

type ReadRequest struct {
	Key string
}

func (m ReadRequest) Encode() []byte {
	w := &writer{}
	w.str(m.Key)
	return w.bytes()
}

func DecodeReadRequest(payload []byte) (ReadRequest, error) {
	r := newReader(payload)
	key, err := r.str()
	if err != nil {
		return ReadRequest{}, err
	}
	return ReadRequest{Key: key}, nil
}

type ReadResponse struct {
	Error uint8
	Key   string
	Value string
}

func (m ReadResponse) Encode() []byte {
	w := &writer{}
	w.u8(m.Error)
	w.str(m.Key)
	w.str(m.Value)
	return w.bytes()
}

func DecodeReadResponse(payload []byte) (ReadResponse, error) {
	r := newReader(payload)
	e, err := r.u8()
	if err != nil {
		return ReadResponse{}, err
	}
	key, err := r.str()
	if err != nil {
		return ReadResponse{}, err
	}
	val, err := r.str()
	if err != nil {
		return ReadResponse{}, err
	}
	return ReadResponse{Error: e, Key: key, Value: val}, nil
}

// --- GetClientShardInfo ---

type GetClientShardInfoRequest struct{}

func (m GetClientShardInfoRequest) Encode() []byte { return nil }

func DecodeGetClientShardInfoRequest(payload []byte) (GetClientShardInfoRequest, error) {
	return GetClientShardInfoRequest{}, nil
}

type GetClientShardInfoResponse struct {
	NumWriteShards uint16
	WriteShardInfo []Endpoint
	ReadShardInfo  []Endpoint
}

func (m GetClientShardInfoResponse) Encode() []byte {
	w := &writer{}
	w.u16(m.NumWriteShards)
	for _, e := range m.WriteShardInfo {
		w.endpoint(e)
	}
	for _, e := range m.ReadShardInfo {
		w.endpoint(e)
	}
	return w.bytes()
}

// DecodeGetClientShardInfoResponse enforces the parallel-array-length
// invariant from SPEC_FULL §4.A/§9: both sequences must have exactly
// NumWriteShards elements, or decode fails rather than handing callers
// mismatched slices.
func DecodeGetClientShardInfoResponse(payload []byte) (GetClientShardInfoResponse, error) {
	r := newReader(payload)
	n, err := r.u16()
	if err != nil {
		return GetClientShardInfoResponse{}, err
	}
	writers := make([]Endpoint, n)
	for i := range writers {
		e, err := r.endpoint()
		if err != nil {
			return GetClientShardInfoResponse{}, err
		}
		writers[i] = e
	}
	readers := make([]Endpoint, n)
	for i := range readers {
		e, err := r.endpoint()
		if err != nil {
			return GetClientShardInfoResponse{}, err
		}
		readers[i] = e
	}
	if !r.finished() {
		return GetClientShardInfoResponse{}, ErrMalformedPayload
	}
	return GetClientShardInfoResponse{NumWriteShards: n, WriteShardInfo: writers, ReadShardInfo: readers}, nil
}

// --- AnnounceShard ---

type AnnounceShardRequest struct {
	Role    Role
	ShardID U128
	IP      U128
	Port    uint16
}

func (m AnnounceShardRequest) Encode() []byte {
	w := &writer{}
	w.u8(uint8(m.Role))
	w.u128(m.ShardID)
	w.u128(m.IP)
	w.u16(m.Port)
	return w.bytes()
}

func DecodeAnnounceShardRequest(payload []byte) (AnnounceShardRequest, error) {
	r := newReader(payload)
	role, err := r.u8()
	if err != nil {
		return AnnounceShardRequest{}, err
	}
	shardID, err := r.u128()
	if err != nil {
		return AnnounceShardRequest{}, err
	}
	ip, err := r.u128()
	if err != nil {
		return AnnounceShardRequest{}, err
	}
	port, err := r.u16()
	if err != nil {
		return AnnounceShardRequest{}, err
	}
	return AnnounceShardRequest{Role: Role(role), ShardID: shardID, IP: ip, Port: port}, nil
}

type AnnounceShardResponse struct {
	WriterSlot uint16
}

func (m AnnounceShardResponse) Encode() []byte {
	w := &writer{}
	w.u16(m.WriterSlot)
	return w.bytes()
}

func DecodeAnnounceShardResponse(payload []byte) (AnnounceShardResponse, error) {
	r := newReader(payload)
	slot, err := r.u16()
	if err != nil {
		return AnnounceShardResponse{}, err
	}
	return AnnounceShardResponse{WriterSlot: slot}, nil
}

// --- GetSharedPeers ---

type GetSharedPeersRequest struct {
	WriterSlot uint16
}

func (m GetSharedPeersRequest) Encode() []byte {
	w := &writer{}
	w.u16(m.WriterSlot)
	return w.bytes()
}

func DecodeGetSharedPeersRequest(payload []byte) (GetSharedPeersRequest, error) {
	r := newReader(payload)
	slot, err := r.u16()
	if err != nil {
		return GetSharedPeersRequest{}, err
	}
	return GetSharedPeersRequest{WriterSlot: slot}, nil
}

type GetSharedPeersResponse struct {
	Peers []Endpoint
}

func (m GetSharedPeersResponse) Encode() []byte {
	w := &writer{}
	for _, e := range m.Peers {
		w.endpoint(e)
	}
	return w.bytes()
}

func DecodeGetSharedPeersResponse(payload []byte) (GetSharedPeersResponse, error) {
	r := newReader(payload)
	var peers []Endpoint
	for !r.finished() {
		e, err := r.endpoint()
		if err != nil {
			return GetSharedPeersResponse{}, err
		}
		peers = append(peers, e)
	}
	return GetSharedPeersResponse{Peers: peers}, nil
}

// --- QueryVersion ---

type QueryVersionRequest struct{}

func (m QueryVersionRequest) Encode() []byte { return nil }

func DecodeQueryVersionRequest(payload []byte) (QueryVersionRequest, error) {
	return QueryVersionRequest{}, nil
}

type QueryVersionResponse struct {
	Version uint64
}

func (m QueryVersionResponse) Encode() []byte {
	w := &writer{}
	w.u64(m.Version)
	return w.bytes()
}

func DecodeQueryVersionResponse(payload []byte) (QueryVersionResponse, error) {
	r := newReader(payload)
	v, err := r.u64()
	if err != nil {
		return QueryVersionResponse{}, err
	}
	return QueryVersionResponse{Version: v}, nil
}

// --- GetVersion ---

type GetVersionRequest struct {
	Version uint64
}

func (m GetVersionRequest) Encode() []byte {
	w := &writer{}
	w.u64(m.Version)
	return w.bytes()
}

func DecodeGetVersionRequest(payload []byte) (GetVersionRequest, error) {
	r := newReader(payload)
	v, err := r.u64()
	if err != nil {
		return GetVersionRequest{}, err
	}
	return GetVersionRequest{Version: v}, nil
}

type GetVersionResponse struct {
	Error   uint8
	Version uint64
	Key     string
	Value   string
}

func (m GetVersionResponse) Encode() []byte {
	w := &writer{}
	w.u8(m.Error)
	w.u64(m.Version)
	w.str(m.Key)
	w.str(m.Value)
	return w.bytes()
}

func DecodeGetVersionResponse(payload []byte) (GetVersionResponse, error) {
	r := newReader(payload)
	e, err := r.u8()
	if err != nil {
		return GetVersionResponse{}, err
	}
	v, err := r.u64()
	if err != nil {
		return GetVersionResponse{}, err
	}
	key, err := r.str()
	if err != nil {
		return GetVersionResponse{}, err
	}
	val, err := r.str()
	if err != nil {
		return GetVersionResponse{}, err
	}
	return GetVersionResponse{Error: e, Version: v, Key: key, Value: val}, nil
}
