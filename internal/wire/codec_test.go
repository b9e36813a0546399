package wire

import (
	"bytes"
	"testing"
)

// TestCodecRoundTrip exercises testable property 1 from the spec: for every
// message kind, decode(encode(m)) == m.
func TestCodecRoundTrip(t *testing.T) {
	ep := func(n byte, port uint16) Endpoint {
		var u U128
		u[15] = n
		return Endpoint{IP: u, Port: port}
	}

	t.Run("Write", func(t *testing.T) {
		want := WriteRequest{Key: "k", Value: "v"}
		got, err := DecodeWriteRequest(want.Encode())
		if err != nil || got != want {
			t.Fatalf("roundtrip mismatch: got %+v err %v", got, err)
		}
	})

	t.Run("WriteResponse", func(t *testing.T) {
		want := WriteResponse{Error: 1}
		got, err := DecodeWriteResponse(want.Encode())
		if err != nil || got != want {
			t.Fatalf("roundtrip mismatch: got %+v err %v", got, err)
		}
	})

	t.Run("Read", func(t *testing.T) {
		want := ReadRequest{Key: "foo"}
		got, err := DecodeReadRequest(want.Encode())
		if err != nil || got != want {
			t.Fatalf("roundtrip mismatch: got %+v err %v", got, err)
		}
	})

	t.Run("ReadResponse", func(t *testing.T) {
		want := ReadResponse{Error: 0, Key: "foo", Value: "bar"}
		got, err := DecodeReadResponse(want.Encode())
		if err != nil || got != want {
			t.Fatalf("roundtrip mismatch: got %+v err %v", got, err)
		}
	})

	t.Run("GetClientShardInfo", func(t *testing.T) {
		want := GetClientShardInfoResponse{
			NumWriteShards: 2,
			WriteShardInfo: []Endpoint{ep(1, 100), ep(2, 200)},
			ReadShardInfo:  []Endpoint{ep(3, 300), ep(4, 400)},
		}
		got, err := DecodeGetClientShardInfoResponse(want.Encode())
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.NumWriteShards != want.NumWriteShards ||
			!endpointsEqual(got.WriteShardInfo, want.WriteShardInfo) ||
			!endpointsEqual(got.ReadShardInfo, want.ReadShardInfo) {
			t.Fatalf("roundtrip mismatch: got %+v want %+v", got, want)
		}
	})

	t.Run("AnnounceShard", func(t *testing.T) {
		want := AnnounceShardRequest{Role: RoleWriter, ShardID: ep(9, 0).IP, IP: ep(1, 0).IP, Port: 9090}
		got, err := DecodeAnnounceShardRequest(want.Encode())
		if err != nil || got != want {
			t.Fatalf("roundtrip mismatch: got %+v err %v", got, err)
		}
	})

	t.Run("AnnounceShardResponse", func(t *testing.T) {
		want := AnnounceShardResponse{WriterSlot: WriterSlotNone}
		got, err := DecodeAnnounceShardResponse(want.Encode())
		if err != nil || got != want {
			t.Fatalf("roundtrip mismatch: got %+v err %v", got, err)
		}
	})

	t.Run("GetSharedPeers", func(t *testing.T) {
		want := GetSharedPeersResponse{Peers: []Endpoint{ep(1, 1), ep(2, 2), ep(3, 3)}}
		got, err := DecodeGetSharedPeersResponse(want.Encode())
		if err != nil || !endpointsEqual(got.Peers, want.Peers) {
			t.Fatalf("roundtrip mismatch: got %+v err %v", got, err)
		}
	})

	t.Run("GetSharedPeersEmpty", func(t *testing.T) {
		want := GetSharedPeersResponse{}
		got, err := DecodeGetSharedPeersResponse(want.Encode())
		if err != nil || len(got.Peers) != 0 {
			t.Fatalf("roundtrip mismatch: got %+v err %v", got, err)
		}
	})

	t.Run("QueryVersionResponse", func(t *testing.T) {
		want := QueryVersionResponse{Version: 42}
		got, err := DecodeQueryVersionResponse(want.Encode())
		if err != nil || got != want {
			t.Fatalf("roundtrip mismatch: got %+v err %v", got, err)
		}
	})

	t.Run("GetVersion", func(t *testing.T) {
		want := GetVersionRequest{Version: 7}
		got, err := DecodeGetVersionRequest(want.Encode())
		if err != nil || got != want {
			t.Fatalf("roundtrip mismatch: got %+v err %v", got, err)
		}
	})

	t.Run("GetVersionResponse", func(t *testing.T) {
		want := GetVersionResponse{Error: 0, Version: 7, Key: "k", Value: "v"}
		got, err := DecodeGetVersionResponse(want.Encode())
		if err != nil || got != want {
			t.Fatalf("roundtrip mismatch: got %+v err %v", got, err)
		}
	})
}

func endpointsEqual(a, b []Endpoint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestScenarioS1CodecBoundary covers scenario S1: a Write request with an
// empty value decodes back to valuelen=0 and an empty value.
func TestScenarioS1CodecBoundary(t *testing.T) {
	req := WriteRequest{Key: "k", Value: ""}
	payload := req.Encode()

	got, err := DecodeWriteRequest(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Key != "k" || got.Value != "" {
		t.Fatalf("expected key=k value=\"\", got %+v", got)
	}
}

// TestFrameSelfDescription covers testable property 2: the first four bytes
// of an encoded frame equal the frame's total length, little-endian.
func TestFrameSelfDescription(t *testing.T) {
	var buf bytes.Buffer
	payload := WriteRequest{Key: "hello", Value: "world"}.Encode()
	if err := WriteFrame(&buf, MsgWrite, true, payload); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	encoded := buf.Bytes()
	wantLen := uint32(len(encoded))
	gotLen := uint32(encoded[0]) | uint32(encoded[1])<<8 | uint32(encoded[2])<<16 | uint32(encoded[3])<<24
	if gotLen != wantLen {
		t.Fatalf("frame self-description mismatch: header says %d, actual length %d", gotLen, wantLen)
	}

	frame, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if frame.Type != MsgWrite || !frame.IsRequest {
		t.Fatalf("unexpected frame: %+v", frame)
	}
	got, err := DecodeWriteRequest(frame.Payload)
	if err != nil || got.Key != "hello" || got.Value != "world" {
		t.Fatalf("payload mismatch: %+v err %v", got, err)
	}
}

// TestU128WireByteOrder covers testable property 1's byte layout for the
// u128 family specifically: spec.md states all multi-byte integers are
// little-endian on the wire, and U128 stores its bytes big-endian
// internally (network/human order) per its doc comment, so the codec must
// reverse the 16 bytes at the wire boundary the same way u16/u32/u64 go
// through binary.LittleEndian.
func TestU128WireByteOrder(t *testing.T) {
	var internal U128
	for i := range internal {
		internal[i] = byte(i) // internal[0] is the most significant byte
	}

	t.Run("writer.u128 reverses byte order", func(t *testing.T) {
		w := &writer{}
		w.u128(internal)
		got := w.bytes()
		if len(got) != 16 {
			t.Fatalf("expected 16 bytes, got %d", len(got))
		}
		for i := 0; i < 16; i++ {
			if got[i] != internal[15-i] {
				t.Fatalf("byte %d: wire has %#x, want reversed internal byte %#x", i, got[i], internal[15-i])
			}
		}
	})

	t.Run("reader.u128 reverses back", func(t *testing.T) {
		w := &writer{}
		w.u128(internal)
		got, err := newReader(w.bytes()).u128()
		if err != nil || got != internal {
			t.Fatalf("roundtrip mismatch: got %+v err %v, want %+v", got, err, internal)
		}
	})

	t.Run("AnnounceShardRequest.Encode places shard_id and ip little-endian", func(t *testing.T) {
		req := AnnounceShardRequest{Role: RoleWriter, ShardID: internal, IP: internal, Port: 0x1234}
		payload := req.Encode()

		// Layout: u8 role, u128 shard_id, u128 ip, u16 port.
		shardIDBytes := payload[1:17]
		ipBytes := payload[17:33]
		for i := 0; i < 16; i++ {
			if shardIDBytes[i] != internal[15-i] {
				t.Fatalf("shard_id byte %d: got %#x, want %#x", i, shardIDBytes[i], internal[15-i])
			}
			if ipBytes[i] != internal[15-i] {
				t.Fatalf("ip byte %d: got %#x, want %#x", i, ipBytes[i], internal[15-i])
			}
		}
		if payload[33] != 0x34 || payload[34] != 0x12 {
			t.Fatalf("port not little-endian: got %#x %#x", payload[33], payload[34])
		}

		got, err := DecodeAnnounceShardRequest(payload)
		if err != nil || got != req {
			t.Fatalf("roundtrip mismatch: got %+v err %v", got, err)
		}
	})
}

func TestReadFrameRejectsUnknownType(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, MessageType(99), true, nil); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if _, err := ReadFrame(&buf); err != ErrUnknownMessageType {
		t.Fatalf("expected ErrUnknownMessageType, got %v", err)
	}
}

func TestReadFrameRejectsShortTotlen(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{2, 0, 0, 0})
	if _, err := ReadFrame(&buf); err != ErrFrameTooShort {
		t.Fatalf("expected ErrFrameTooShort, got %v", err)
	}
}

func TestReadFrameRejectsOverLongPayload(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, MsgWrite, true, make([]byte, MaxPayloadSize+1)); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if _, err := ReadFrame(&buf); err != ErrPayloadTooLarge {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestReadFrameRejectsTruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, MsgWrite, true, []byte("hello")); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	truncated := buf.Bytes()[:buf.Len()-2]
	if _, err := ReadFrame(bytes.NewReader(truncated)); err == nil {
		t.Fatal("expected error reading truncated frame")
	}
}

func TestDecodeGetClientShardInfoResponseRejectsMismatchedLengths(t *testing.T) {
	w := &writer{}
	w.u16(2)
	w.endpoint(Endpoint{})
	// Two entries in total for num_write_shards=2: the writer array takes
	// both and the reader array gets none, a malformed frame.
	w.endpoint(Endpoint{})
	if _, err := DecodeGetClientShardInfoResponse(w.bytes()); err == nil {
		t.Fatal("expected a payload with no reader entries for num_write_shards=2 to be rejected")
	}

	w2 := &writer{}
	w2.u16(2)
	w2.endpoint(Endpoint{})
	w2.endpoint(Endpoint{})
	w2.endpoint(Endpoint{})
	// Three entries total for num_write_shards=2 fill the writer array and
	// leave the reader array one entry short, so decode must reject it.
	if _, err := DecodeGetClientShardInfoResponse(w2.bytes()); err == nil {
		t.Fatal("expected a reader array shorter than num_write_shards to be rejected")
	}
}
