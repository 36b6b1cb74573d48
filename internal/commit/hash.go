// Package commit implements the role commitment scheme: players' secret
// (role, alignment) assignments are hashed into leaves of a sorted-pair Merkle
// tree whose root is published at game start, and each player later proves
// their own leaf against that root.
package commit

import (
	"bytes"

	"github.com/cometbft/cometbft/crypto/tmhash"
)

// HashSize is the byte length of leaves, proof nodes and roots.
const HashSize = tmhash.Size

// Leaf returns SHA-256(identity || roleTag || alignmentTag || seed).
//
// The seed binds every leaf to one game, so a proof from another game (or a
// stale commitment) never verifies.
func Leaf(identity []byte, roleTag, alignmentTag byte, seed []byte) []byte {
	buf := make([]byte, 0, len(identity)+2+len(seed))
	buf = append(buf, identity...)
	buf = append(buf, roleTag, alignmentTag)
	buf = append(buf, seed...)
	return tmhash.Sum(buf)
}

// hashPair hashes two nodes in byte order, smaller first, so proofs carry no
// left/right position bits.
func hashPair(a, b []byte) []byte {
	if bytes.Compare(a, b) > 0 {
		a, b = b, a
	}
	buf := make([]byte, 0, len(a)+len(b))
	buf = append(buf, a...)
	buf = append(buf, b...)
	return tmhash.Sum(buf)
}
