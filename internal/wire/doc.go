// Package wire implements the binary frame format and message taxonomy
// shared by every node role in the cluster.
//
// Every message on the wire has the same envelope:
//
//	+----------------+-----------+---------------+----------------+
//	| totlen (u32le) | msg_type  | is_request    | payload        |
//	|                | (u8)      | (u8)          | (totlen-6 B)   |
//	+----------------+-----------+---------------+----------------+
//
// totlen counts all four fields, including itself. msg_type selects one of
// the seven message kinds below; is_request distinguishes a request from its
// matching response. Multi-byte integers are little-endian throughout, and
// length-prefixed fields use a u16 length unless documented otherwise.
//
//	Router (write/read shards, info server, client)
//	        │
//	        ▼
//	  ReadFrame / WriteFrame  (length-prefixed envelope)
//	        │
//	        ▼
//	  Decode / Encode         (per msg_type payload codec)
package wire
