package router

import (
	"net"
	"sync"

	"github.com/dreamware/shardkv/internal/metrics"
	"github.com/dreamware/shardkv/internal/wire"
)

// conn is one peer's half of the connection pool entry: the underlying
// socket plus a write mutex giving per-peer exclusive access, so outbound
// frames to the same peer are never interleaved. The inbound loop that owns
// the read side runs in its own goroutine, started by whichever of
// accept/dial created the conn.
type conn struct {
	nc      net.Conn
	peer    wire.Endpoint
	writeMu sync.Mutex
}

func (c *conn) sendFrame(msgType wire.MessageType, isRequest bool, payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return wire.WriteFrame(c.nc, msgType, isRequest, payload)
}

// inboundLoop reads one frame at a time from c and dispatches it to r's
// handler until a read, decode, or handler error closes the connection.
func (r *Router) inboundLoop(c *conn) {
	defer r.dropConn(c)

	log := r.log.With().Str("peer", c.peer.String()).Logger()
	for {
		frame, err := wire.ReadFrame(c.nc)
		if err != nil {
			log.Debug().Err(err).Msg("connection closed")
			return
		}
		if err := r.dispatch(c, frame); err != nil {
			log.Warn().Err(err).Str("msg_type", frame.Type.String()).Msg("dispatch failed, closing connection")
			return
		}
	}
}

// dispatch decodes frame's payload into the concrete message for its type
// and routes it to the matching Handler method. Requests get their response
// written back on the same connection; responses only update handler state.
func (r *Router) dispatch(c *conn, frame wire.Frame) error {
	h := r.handler

	if frame.IsRequest {
		metrics.RequestsTotal.WithLabelValues(r.role, frame.Type.String()).Inc()
		switch frame.Type {
		case wire.MsgWrite:
			req, err := wire.DecodeWriteRequest(frame.Payload)
			if err != nil {
				return err
			}
			resp, err := h.HandleWrite(req)
			if err != nil {
				return err
			}
			return c.sendFrame(frame.Type, false, resp.Encode())

		case wire.MsgRead:
			req, err := wire.DecodeReadRequest(frame.Payload)
			if err != nil {
				return err
			}
			resp, err := h.HandleRead(req)
			if err != nil {
				return err
			}
			return c.sendFrame(frame.Type, false, resp.Encode())

		case wire.MsgGetClientShardInfo:
			req, err := wire.DecodeGetClientShardInfoRequest(frame.Payload)
			if err != nil {
				return err
			}
			resp, err := h.HandleGetClientShardInfo(req)
			if err != nil {
				return err
			}
			return c.sendFrame(frame.Type, false, resp.Encode())

		case wire.MsgQueryVersion:
			req, err := wire.DecodeQueryVersionRequest(frame.Payload)
			if err != nil {
				return err
			}
			resp, err := h.HandleQueryVersion(req)
			if err != nil {
				return err
			}
			return c.sendFrame(frame.Type, false, resp.Encode())

		case wire.MsgGetVersion:
			req, err := wire.DecodeGetVersionRequest(frame.Payload)
			if err != nil {
				return err
			}
			resp, err := h.HandleGetVersion(req)
			if err != nil {
				return err
			}
			return c.sendFrame(frame.Type, false, resp.Encode())

		case wire.MsgAnnounceShard:
			req, err := wire.DecodeAnnounceShardRequest(frame.Payload)
			if err != nil {
				return err
			}
			resp, err := h.HandleAnnounceShard(req)
			if err != nil {
				return err
			}
			return c.sendFrame(frame.Type, false, resp.Encode())

		case wire.MsgGetSharedPeers:
			req, err := wire.DecodeGetSharedPeersRequest(frame.Payload)
			if err != nil {
				return err
			}
			resp, err := h.HandleGetSharedPeers(req)
			if err != nil {
				return err
			}
			return c.sendFrame(frame.Type, false, resp.Encode())
		}
		return wire.ErrUnknownMessageType
	}

	switch frame.Type {
	case wire.MsgWrite:
		resp, err := wire.DecodeWriteResponse(frame.Payload)
		if err != nil {
			return err
		}
		return h.HandleWriteResponse(resp, c.peer)

	case wire.MsgRead:
		resp, err := wire.DecodeReadResponse(frame.Payload)
		if err != nil {
			return err
		}
		return h.HandleReadResponse(resp, c.peer)

	case wire.MsgGetClientShardInfo:
		resp, err := wire.DecodeGetClientShardInfoResponse(frame.Payload)
		if err != nil {
			return err
		}
		return h.HandleGetClientShardInfoResponse(resp, c.peer)

	case wire.MsgQueryVersion:
		resp, err := wire.DecodeQueryVersionResponse(frame.Payload)
		if err != nil {
			return err
		}
		return h.HandleQueryVersionResponse(resp, c.peer)

	case wire.MsgGetVersion:
		resp, err := wire.DecodeGetVersionResponse(frame.Payload)
		if err != nil {
			return err
		}
		return h.HandleGetVersionResponse(resp, c.peer)

	case wire.MsgAnnounceShard:
		resp, err := wire.DecodeAnnounceShardResponse(frame.Payload)
		if err != nil {
			return err
		}
		return h.HandleAnnounceShardResponse(resp, c.peer)

	case wire.MsgGetSharedPeers:
		resp, err := wire.DecodeGetSharedPeersResponse(frame.Payload)
		if err != nil {
			return err
		}
		return h.HandleGetSharedPeersResponse(resp, c.peer)
	}
	return wire.ErrUnknownMessageType
}
