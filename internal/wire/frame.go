package wire

import (
	"encoding/binary"
	"io"
)

// envelopeLen is the fixed portion of every frame: totlen, msg_type, is_request.
const envelopeLen = 4 + 1 + 1

// Frame is a fully decoded envelope: the message kind, whether it is a
// request or a response, and the raw (still-encoded) payload bytes. ReadFrame
// splits a byte stream into Frames; per-type codecs then turn the payload
// into a concrete request/response struct.
type Frame struct {
	Type      MessageType
	IsRequest bool
	Payload   []byte
}

// ReadFrame reads exactly one frame from r: four bytes of totlen, then
// totlen-4 further bytes, then splits those into msg_type/is_request/payload.
// It rejects totlen < envelopeLen, unknown msg_type, and an over-long
// payload before ever allocating a buffer sized from attacker-controlled
// input beyond MaxPayloadSize.
func ReadFrame(r io.Reader) (Frame, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return Frame{}, err
	}
	totlen := binary.LittleEndian.Uint32(lenBuf[:])
	if totlen < envelopeLen {
		return Frame{}, ErrFrameTooShort
	}
	payloadLen := totlen - envelopeLen
	if payloadLen > MaxPayloadSize {
		return Frame{}, ErrPayloadTooLarge
	}

	rest := make([]byte, totlen-4)
	if _, err := io.ReadFull(r, rest); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return Frame{}, err
	}

	msgType := MessageType(rest[0])
	if !msgType.valid() {
		return Frame{}, ErrUnknownMessageType
	}
	isRequest := rest[1] != 0
	payload := rest[2:]

	return Frame{Type: msgType, IsRequest: isRequest, Payload: payload}, nil
}

// WriteFrame serialises a frame and writes it to w in a single call,
// computing totlen from the supplied payload's length after the fact, the
// way the spec's encoder is required to.
func WriteFrame(w io.Writer, msgType MessageType, isRequest bool, payload []byte) error {
	totlen := uint32(envelopeLen + len(payload))
	buf := make([]byte, totlen)
	binary.LittleEndian.PutUint32(buf[0:4], totlen)
	buf[4] = byte(msgType)
	if isRequest {
		buf[5] = 1
	}
	copy(buf[6:], payload)

	_, err := w.Write(buf)
	return err
}
