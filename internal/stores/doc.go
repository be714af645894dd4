// Package stores provides the network-backed credential stores behind the
// Engine: Redis (standalone, sentinel or cluster through go-redis) and etcd.
//
// # Design
//
// Each store persists opaque record bytes under a caller-built key. Reads
// distinguish a missing key (ErrNotFound) from every other failure
// (ErrUnavailable). Conditional writes are atomic on the server: SETNX or a
// Lua compare-and-set on Redis, a single Txn on etcd.
//
// # Architecture boundaries
//
// This package owns persistence only. It does NOT encode records, derive
// hashes or decide whether a credential is accepted. Those belong to package
// record, package password and the Engine.
//
// # What this package must NOT do
//
//   - Import goCred or any sibling internal package.
//   - Apply its own timeouts; deadlines arrive on the caller's context.
//   - Log record contents.
package stores
