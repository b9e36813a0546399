package router

import (
	"errors"

	"github.com/dreamware/shardkv/internal/wire"
)

// ErrNotImplemented is returned by an UnimplementedHandler method that a
// role does not support. The router treats it the same as any other handler
// error: the offending connection is closed, since invoking an
// unsupported callback is a programming error on the peer's part, not a
// recoverable protocol condition.
var ErrNotImplemented = errors.New("router: handler method not implemented")

// Handler is the callback surface a node role provides to the router. It has
// one request method per message kind (returning the matching response) and
// one response method per message kind (returning only an error, used to
// reject malformed/unexpected responses). Every role embeds
// UnimplementedHandler and overrides only the methods its role supports,
// the Go expression of the spec's "per-role router configured with only the
// handlers it supports" design note.
type Handler interface {
	HandleWrite(req wire.WriteRequest) (wire.WriteResponse, error)
	HandleRead(req wire.ReadRequest) (wire.ReadResponse, error)
	HandleGetClientShardInfo(req wire.GetClientShardInfoRequest) (wire.GetClientShardInfoResponse, error)
	HandleQueryVersion(req wire.QueryVersionRequest) (wire.QueryVersionResponse, error)
	HandleGetVersion(req wire.GetVersionRequest) (wire.GetVersionResponse, error)
	HandleAnnounceShard(req wire.AnnounceShardRequest) (wire.AnnounceShardResponse, error)
	HandleGetSharedPeers(req wire.GetSharedPeersRequest) (wire.GetSharedPeersResponse, error)

	HandleWriteResponse(resp wire.WriteResponse, peer wire.Endpoint) error
	HandleReadResponse(resp wire.ReadResponse, peer wire.Endpoint) error
	HandleGetClientShardInfoResponse(resp wire.GetClientShardInfoResponse, peer wire.Endpoint) error
	HandleQueryVersionResponse(resp wire.QueryVersionResponse, peer wire.Endpoint) error
	HandleGetVersionResponse(resp wire.GetVersionResponse, peer wire.Endpoint) error
	HandleAnnounceShardResponse(resp wire.AnnounceShardResponse, peer wire.Endpoint) error
	HandleGetSharedPeersResponse(resp wire.GetSharedPeersResponse, peer wire.Endpoint) error
}

// UnimplementedHandler satisfies Handler with ErrNotImplemented on every
// method. Roles embed it by value and override the subset of methods they
// actually handle.
type UnimplementedHandler struct{}

func (UnimplementedHandler) HandleWrite(wire.WriteRequest) (wire.WriteResponse, error) {
	return wire.WriteResponse{}, ErrNotImplemented
}

func (UnimplementedHandler) HandleRead(wire.ReadRequest) (wire.ReadResponse, error) {
	return wire.ReadResponse{}, ErrNotImplemented
}

func (UnimplementedHandler) HandleGetClientShardInfo(wire.GetClientShardInfoRequest) (wire.GetClientShardInfoResponse, error) {
	return wire.GetClientShardInfoResponse{}, ErrNotImplemented
}

func (UnimplementedHandler) HandleQueryVersion(wire.QueryVersionRequest) (wire.QueryVersionResponse, error) {
	return wire.QueryVersionResponse{}, ErrNotImplemented
}

func (UnimplementedHandler) HandleGetVersion(wire.GetVersionRequest) (wire.GetVersionResponse, error) {
	return wire.GetVersionResponse{}, ErrNotImplemented
}

func (UnimplementedHandler) HandleAnnounceShard(wire.AnnounceShardRequest) (wire.AnnounceShardResponse, error) {
	return wire.AnnounceShardResponse{}, ErrNotImplemented
}

func (UnimplementedHandler) HandleGetSharedPeers(wire.GetSharedPeersRequest) (wire.GetSharedPeersResponse, error) {
	return wire.GetSharedPeersResponse{}, ErrNotImplemented
}

func (UnimplementedHandler) HandleWriteResponse(wire.WriteResponse, wire.Endpoint) error {
	return ErrNotImplemented
}

func (UnimplementedHandler) HandleReadResponse(wire.ReadResponse, wire.Endpoint) error {
	return ErrNotImplemented
}

func (UnimplementedHandler) HandleGetClientShardInfoResponse(wire.GetClientShardInfoResponse, wire.Endpoint) error {
	return ErrNotImplemented
}

func (UnimplementedHandler) HandleQueryVersionResponse(wire.QueryVersionResponse, wire.Endpoint) error {
	return ErrNotImplemented
}

func (UnimplementedHandler) HandleGetVersionResponse(wire.GetVersionResponse, wire.Endpoint) error {
	return ErrNotImplemented
}

func (UnimplementedHandler) HandleAnnounceShardResponse(wire.AnnounceShardResponse, wire.Endpoint) error {
	return ErrNotImplemented
}

func (UnimplementedHandler) HandleGetSharedPeersResponse(wire.GetSharedPeersResponse, wire.Endpoint) error {
	return ErrNotImplemented
}
