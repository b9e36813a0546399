package writeshard

import (
	"github.com/dreamware/shardkv/internal/router"
	"github.com/dreamware/shardkv/internal/wire"
)

// Handler adapts a State to router.Handler for the write shard's three
// supported request kinds: Write, QueryVersion, GetVersion. Every other
// method falls through to UnimplementedHandler.
type Handler struct {
	router.UnimplementedHandler

	state *State
}

func NewHandler(state *State) *Handler {
	return &Handler{state: state}
}

func (h *Handler) HandleWrite(req wire.WriteRequest) (wire.WriteResponse, error) {
	h.state.Write(req.Key, req.Value)
	return wire.WriteResponse{Error: errOK}, nil
}

func (h *Handler) HandleQueryVersion(wire.QueryVersionRequest) (wire.QueryVersionResponse, error) {
	return wire.QueryVersionResponse{Version: h.state.Version()}, nil
}

func (h *Handler) HandleGetVersion(req wire.GetVersionRequest) (wire.GetVersionResponse, error) {
	entry, ok := h.state.At(req.Version)
	if !ok {
		return wire.GetVersionResponse{Error: errFailure}, nil
	}
	return wire.GetVersionResponse{
		Error:   errOK,
		Version: req.Version,
		Key:     entry.Key,
		Value:   entry.Value,
	}, nil
}

// HandleAnnounceShardResponse records the writer_slot the info server
// assigned, per SPEC_FULL §4.D: stored, but not otherwise used by the
// write shard. A wire.WriterSlotNone reply (every slot already taken) is
// not an assignment and leaves the writer slot unrecorded. Without this
// override the response would fall through to UnimplementedHandler and the
// announce connection would be torn down after every reply.
func (h *Handler) HandleAnnounceShardResponse(resp wire.AnnounceShardResponse, _ wire.Endpoint) error {
	if resp.WriterSlot == wire.WriterSlotNone {
		return nil
	}
	h.state.SetWriterSlot(resp.WriterSlot)
	return nil
}
