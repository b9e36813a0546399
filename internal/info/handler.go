package info

import (
	"github.com/rs/zerolog"

	"github.com/dreamware/shardkv/internal/router"
	"github.com/dreamware/shardkv/internal/wire"
)

// Handler adapts a Registry to router.Handler, implementing exactly the
// three message kinds the info server answers: AnnounceShard,
// GetClientShardInfo, and GetSharedPeers. Every other request type falls
// through to UnimplementedHandler, matching the Rust InfoRouter's
// unimplemented!() bodies for requests it never receives.
type Handler struct {
	router.UnimplementedHandler

	registry *Registry
	log      zerolog.Logger
}

// NewHandler builds an info Handler backed by a registry with the given
// number of write-shard slots.
func NewHandler(numWriteShards int, log zerolog.Logger) *Handler {
	return &Handler{registry: NewRegistry(numWriteShards), log: log}
}

func (h *Handler) HandleAnnounceShard(req wire.AnnounceShardRequest) (wire.AnnounceShardResponse, error) {
	ep := wire.Endpoint{IP: req.IP, Port: req.Port}

	var slotIdx uint16
	switch req.Role {
	case wire.RoleWriter:
		slotIdx = h.registry.AnnounceWriter(req.ShardID, ep)
		if slotIdx == wire.WriterSlotNone {
			h.log.Warn().Str("peer", ep.String()).Msg("too many write shards already attached, skipping")
		}
	case wire.RoleReader:
		slotIdx = h.registry.AnnounceReader(req.ShardID, ep)
	default:
		return wire.AnnounceShardResponse{WriterSlot: wire.WriterSlotNone}, wire.ErrMalformedPayload
	}

	h.log.Debug().Str("peer", ep.String()).Str("role", req.Role.String()).Uint16("slot", slotIdx).Msg("shard announced")
	return wire.AnnounceShardResponse{WriterSlot: slotIdx}, nil
}

func (h *Handler) HandleGetClientShardInfo(_ wire.GetClientShardInfoRequest) (wire.GetClientShardInfoResponse, error) {
	view := h.registry.ClientView()
	if !view.Complete {
		return wire.GetClientShardInfoResponse{}, nil
	}
	return wire.GetClientShardInfoResponse{
		NumWriteShards: uint16(len(view.Writers)),
		WriteShardInfo: view.Writers,
		ReadShardInfo:  view.Readers,
	}, nil
}

func (h *Handler) HandleGetSharedPeers(req wire.GetSharedPeersRequest) (wire.GetSharedPeersResponse, error) {
	peers, ok := h.registry.Peers(req.WriterSlot)
	if !ok {
		return wire.GetSharedPeersResponse{}, nil
	}
	return wire.GetSharedPeersResponse{Peers: peers}, nil
}
