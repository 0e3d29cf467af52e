// Package rbtree provides an ordered index keyed by uint64, backed by a
// red-black tree. It answers the "which allocation owns this address"
// question that the typed heap, the string heap, and the source map all
// need: given an arbitrary key, find the greatest entry less than or
// equal to it in O(log n).
//
// The implementation follows the classic CLRS construction, with nil
// children standing in for the black leaves: both the insert fixup and
// the delete fixup walk up from the changed node. No operation returns
// an error; Insert reports false when the key is already present.
package rbtree
