package assign

import (
	"encoding/binary"
	"fmt"

	"github.com/cometbft/cometbft/crypto/tmhash"
)

// DeterministicRng chains SHA-256 over the game seed. Each draw hashes the
// current state with the shuffle position and the digest becomes the next
// state, so a seed always replays to the same deal.
type DeterministicRng struct {
	state []byte
}

func NewDeterministicRng(seed []byte) (*DeterministicRng, error) {
	if len(seed) == 0 {
		return nil, fmt.Errorf("DeterministicRng: empty seed")
	}
	return &DeterministicRng{state: append([]byte(nil), seed...)}, nil
}

// NextIndex returns a value in [0, n) for shuffle position pos.
func (r *DeterministicRng) NextIndex(pos, n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("DeterministicRng.NextIndex: invalid bound %d", n)
	}
	buf := make([]byte, 0, len(r.state)+1)
	buf = append(buf, r.state...)
	buf = append(buf, byte(pos))
	r.state = tmhash.Sum(buf)
	return int(binary.BigEndian.Uint32(r.state[:4]) % uint32(n)), nil
}
