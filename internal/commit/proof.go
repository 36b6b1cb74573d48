package commit

import (
	"bytes"
	"fmt"
)

// ComputeRoot folds proof into leaf and returns the reconstructed root.
func ComputeRoot(leaf []byte, proof [][]byte) ([]byte, error) {
	if len(leaf) != HashSize {
		return nil, fmt.Errorf("leaf must be %d bytes, got %d", HashSize, len(leaf))
	}
	cur := append([]byte(nil), leaf...)
	for i, sib := range proof {
		if len(sib) != HashSize {
			return nil, fmt.Errorf("proof[%d] must be %d bytes, got %d", i, HashSize, len(sib))
		}
		cur = hashPair(cur, sib)
	}
	return cur, nil
}

// Verify reports whether (identity, roleTag, alignmentTag) under seed is a
// leaf of the tree committed to by root. Malformed inputs never verify.
func Verify(identity []byte, roleTag, alignmentTag byte, seed []byte, proof [][]byte, root []byte) bool {
	if len(identity) == 0 || len(seed) == 0 || len(root) != HashSize {
		return false
	}
	got, err := ComputeRoot(Leaf(identity, roleTag, alignmentTag, seed), proof)
	if err != nil {
		return false
	}
	return bytes.Equal(got, root)
}
