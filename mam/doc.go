// Package mam implements the channel-state machinery of a masked
// authenticated messaging (MAM) channel: a publisher-controlled sequence of
// masked messages anchored at chained addresses derived from a merkle tree
// over a private seed.
//
// # Architecture
//
// The package is built from four small state machines plus a controller that
// composes them with two external collaborators:
//
//  1. ChannelState tracks the publisher's merkle-tree cursor: the active
//     subtree window [Start, Start+Count) and the next unused leaf Index.
//     Advance moves the cursor after each publication and is the only
//     mutator of tree-position fields, so a one-time leaf can never be
//     reused.
//
//  2. DeriveAddress maps a channel root to the ledger attachment address.
//     In public mode the root itself is the address; in private and
//     restricted modes the address is the Curl hash of the root, so only
//     holders of the key material can correlate address to content.
//
//  3. Reassembler reconstructs complete message payloads from unordered
//     ledger-transaction fragments grouped by bundle. The buffer is a
//     bounded cache with age-based sweeping and an explicit Abandon
//     operation, so a network flake cannot grow it without bound.
//
//  4. Traverser walks a chain of roots: the decoded payload at root n
//     reveals root n+1, so traversal is a hard sequential dependency chain.
//     Next pulls one message at a time; Traverse collects the whole chain
//     until a root yields nothing.
//
// The Controller wires these together and exposes the channel operations:
// Create masks a message through the codec, computes the attachment address
// from the pre-advance root and advances the cursor; Attach submits the
// masked payload as a zero-value transfer; Fetch and FetchSingle consume a
// chain; WithMode switches channel visibility.
//
// # External collaborators
//
// The masking/authentication codec that produces and parses payloads is
// consumed through the Codec interface and treated as a black box. The
// tangle node is consumed through ledger.Client. Both are injected at
// construction time; there is no process-wide provider singleton, so
// multiple independent channel sessions can coexist in one process.
//
// # Message flow
//
// Publication: Controller.Create -> Codec.CreateMessage -> ChannelState
// Advance -> DeriveAddress -> Controller.Attach -> ledger.
//
// Consumption: Traverser -> DeriveAddress -> ledger find/get ->
// Reassembler -> Codec.DecodeMessage -> next root, repeated until the chain
// is exhausted.
package mam
