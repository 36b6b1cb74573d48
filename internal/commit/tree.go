package commit

import "fmt"

// BuildTree commits to leaves and returns the root plus one proof per leaf, in
// input order.
//
// The leaf layer is padded with zero hashes up to the next power of two. A
// single leaf is its own root and has an empty proof.
func BuildTree(leaves [][]byte) (root []byte, proofs [][][]byte, err error) {
	if len(leaves) == 0 {
		return nil, nil, fmt.Errorf("commit: no leaves")
	}
	for i, l := range leaves {
		if len(l) != HashSize {
			return nil, nil, fmt.Errorf("commit: leaf %d must be %d bytes, got %d", i, HashSize, len(l))
		}
	}
	if len(leaves) == 1 {
		return append([]byte(nil), leaves[0]...), [][][]byte{{}}, nil
	}

	width := 1
	for width < len(leaves) {
		width <<= 1
	}
	layer := make([][]byte, width)
	for i := range layer {
		if i < len(leaves) {
			layer[i] = append([]byte(nil), leaves[i]...)
		} else {
			layer[i] = make([]byte, HashSize)
		}
	}

	layers := [][][]byte{layer}
	for len(layer) > 1 {
		next := make([][]byte, len(layer)/2)
		for i := range next {
			next[i] = hashPair(layer[2*i], layer[2*i+1])
		}
		layers = append(layers, next)
		layer = next
	}

	proofs = make([][][]byte, len(leaves))
	for i := range leaves {
		idx := i
		p := make([][]byte, 0, len(layers)-1)
		for _, l := range layers[:len(layers)-1] {
			p = append(p, append([]byte(nil), l[idx^1]...))
			idx /= 2
		}
		proofs[i] = p
	}
	return layer[0], proofs, nil
}
