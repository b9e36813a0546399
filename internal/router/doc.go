// Package router is the generic transport layer shared by every node role:
// info server, write shard, read shard, and client. It multiplexes typed
// request/response messages over long-lived, bidirectional TCP connections,
// dispatching inbound frames to a caller-supplied Handler and reusing one
// connection per peer for all subsequent outbound sends.
//
//	           ┌───────────────────────────────────────────┐
//	           │                  Router                    │
//	           │                                             │
//	  accept → │  connections: endpoint -> *conn (RWMutex)  │ ← dial (Client.Send)
//	           │        │                                     │
//	           │        ▼                                     │
//	           │  inbound loop (1 per conn, goroutine)        │
//	           │        │                                     │
//	           │        ▼                                     │
//	           │      Handler                                 │
//	           └───────────────────────────────────────────┘
//
// A single Handler instance is shared across every connection's inbound
// loop; its methods may be invoked concurrently and must be internally
// synchronised. Handler request methods return the matching response, which
// the router sends back on the same connection; response methods return
// nothing and exist purely to let the handler update its own state (there is
// no request/response correlation id on the wire — see SPEC_FULL.md §9).
package router
