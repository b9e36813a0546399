package readshard

import (
	"github.com/dreamware/shardkv/internal/router"
	"github.com/dreamware/shardkv/internal/wire"
)

const (
	errOK      uint8 = 0
	errFailure uint8 = 1
)

// Handler adapts a State to router.Handler. It serves the three request
// kinds a read shard answers (Read, QueryVersion, GetVersion) and the four
// response kinds its own background loops expect (AnnounceShard,
// GetSharedPeers, QueryVersion, GetVersion responses) — everything else
// falls through to UnimplementedHandler.
type Handler struct {
	router.UnimplementedHandler

	state *State
}

func NewHandler(state *State) *Handler {
	return &Handler{state: state}
}

func (h *Handler) HandleRead(req wire.ReadRequest) (wire.ReadResponse, error) {
	value, ok := h.state.Read(req.Key)
	if !ok {
		return wire.ReadResponse{Error: errFailure, Key: req.Key}, nil
	}
	return wire.ReadResponse{Error: errOK, Key: req.Key, Value: value}, nil
}

func (h *Handler) HandleQueryVersion(wire.QueryVersionRequest) (wire.QueryVersionResponse, error) {
	return wire.QueryVersionResponse{Version: h.state.AppliedVersion()}, nil
}

func (h *Handler) HandleGetVersion(req wire.GetVersionRequest) (wire.GetVersionResponse, error) {
	entry, ok := h.state.LogAt(req.Version)
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

func (h *Handler) HandleAnnounceShardResponse(resp wire.AnnounceShardResponse, _ wire.Endpoint) error {
	h.state.SetWriterSlot(resp.WriterSlot)
	return nil
}

func (h *Handler) HandleGetSharedPeersResponse(resp wire.GetSharedPeersResponse, _ wire.Endpoint) error {
	h.state.SetPeers(resp.Peers)
	return nil
}

func (h *Handler) HandleQueryVersionResponse(resp wire.QueryVersionResponse, _ wire.Endpoint) error {
	h.state.SetRequestedVersion(resp.Version)
	return nil
}

func (h *Handler) HandleGetVersionResponse(resp wire.GetVersionResponse, _ wire.Endpoint) error {
	if resp.Error != errOK {
		return nil
	}
	h.state.ApplyNext(resp.Version, resp.Key, resp.Value)
	return nil
}
