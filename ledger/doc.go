// Package ledger defines the boundary to the tangle node that anchors MAM
// channel messages.
//
// The Client interface is the narrow contract the channel core needs from a
// node: find the transactions attached at an address, fetch their objects,
// and prepare/broadcast zero-value transfers. IotaClient implements it over
// the iota.go node API; MockClient provides a settable-func test double.
//
// Transaction carries only the fields the fragment-reassembly logistics
// consume: the bundle grouping, the signature message fragment holding the
// payload share, and the current/last indices that declare the fragment's
// position and the bundle's total length.
package ledger
