package router

import (
	"context"

	"github.com/dreamware/shardkv/internal/wire"
)

// RouterClient is a cloneable handle onto a Router's connection pool. It is
// the "client()" value from SPEC_FULL §4.B: any number of RouterClients can
// share one Router, each dialing or reusing pooled connections independently.
type RouterClient struct {
	router *Router
}

// Send enqueues an outbound request of the given type to peer, dialing a new
// connection if none is pooled yet. It returns once the frame has been
// written to the socket; there is no request/response correlation, so the
// matching response (if any) arrives later via the Handler's response
// callback on whatever connection the peer replies on.
func (c *RouterClient) Send(ctx context.Context, msgType wire.MessageType, payload []byte, peer wire.Endpoint) error {
	conn, err := c.router.getOrDial(ctx, peer)
	if err != nil {
		return err
	}
	if err := conn.sendFrame(msgType, true, payload); err != nil {
		c.router.dropConn(conn)
		return err
	}
	return nil
}

func (c *RouterClient) Write(ctx context.Context, req wire.WriteRequest, peer wire.Endpoint) error {
	return c.Send(ctx, wire.MsgWrite, req.Encode(), peer)
}

func (c *RouterClient) Read(ctx context.Context, req wire.ReadRequest, peer wire.Endpoint) error {
	return c.Send(ctx, wire.MsgRead, req.Encode(), peer)
}

func (c *RouterClient) GetClientShardInfo(ctx context.Context, peer wire.Endpoint) error {
	return c.Send(ctx, wire.MsgGetClientShardInfo, wire.GetClientShardInfoRequest{}.Encode(), peer)
}

func (c *RouterClient) QueryVersion(ctx context.Context, peer wire.Endpoint) error {
	return c.Send(ctx, wire.MsgQueryVersion, wire.QueryVersionRequest{}.Encode(), peer)
}

func (c *RouterClient) GetVersion(ctx context.Context, req wire.GetVersionRequest, peer wire.Endpoint) error {
	return c.Send(ctx, wire.MsgGetVersion, req.Encode(), peer)
}

func (c *RouterClient) AnnounceShard(ctx context.Context, req wire.AnnounceShardRequest, peer wire.Endpoint) error {
	return c.Send(ctx, wire.MsgAnnounceShard, req.Encode(), peer)
}

func (c *RouterClient) GetSharedPeers(ctx context.Context, req wire.GetSharedPeersRequest, peer wire.Endpoint) error {
	return c.Send(ctx, wire.MsgGetSharedPeers, req.Encode(), peer)
}
