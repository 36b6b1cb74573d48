package commit

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func testSeed() []byte {
	s := sha256.Sum256([]byte("avalon-test-seed"))
	return s[:]
}

func testLeaves(n int, seed []byte) ([][]byte, []string) {
	ids := make([]string, n)
	leaves := make([][]byte, n)
	for i := 0; i < n; i++ {
		ids[i] = fmt.Sprintf("player-%d", i)
		leaves[i] = Leaf([]byte(ids[i]), byte(i%6+1), byte(i%2+1), seed)
	}
	return leaves, ids
}

func TestLeaf_KnownVector(t *testing.T) {
	got := Leaf([]byte("alice"), 1, 1, make([]byte, 32))
	require.Equal(t, "0xdd235bbed245018ba499d07e07019fdfbc32d6a31f57b396352622b8d398ba5e", FormatHex(got))
}

func TestHashPair_OrderIndependent(t *testing.T) {
	a := bytes.Repeat([]byte{0x01}, HashSize)
	b := bytes.Repeat([]byte{0xff}, HashSize)
	require.Equal(t, hashPair(a, b), hashPair(b, a))

	want := sha256.Sum256(append(append([]byte(nil), a...), b...))
	require.Equal(t, want[:], hashPair(b, a))
}

func TestBuildTree_RoundTripAllSizes(t *testing.T) {
	seed := testSeed()
	for n := 1; n <= 10; n++ {
		leaves, ids := testLeaves(n, seed)
		root, proofs, err := BuildTree(leaves)
		require.NoError(t, err)
		require.Len(t, proofs, n)

		for i := 0; i < n; i++ {
			ok := Verify([]byte(ids[i]), byte(i%6+1), byte(i%2+1), seed, proofs[i], root)
			require.Truef(t, ok, "n=%d leaf=%d should verify", n, i)
		}
	}
}

func TestBuildTree_SingleLeafIsRoot(t *testing.T) {
	leaves, _ := testLeaves(1, testSeed())
	root, proofs, err := BuildTree(leaves)
	require.NoError(t, err)
	require.Equal(t, leaves[0], root)
	require.Len(t, proofs, 1)
	require.Empty(t, proofs[0])
}

func TestBuildTree_RejectsBadInput(t *testing.T) {
	_, _, err := BuildTree(nil)
	require.Error(t, err)

	_, _, err = BuildTree([][]byte{{1, 2, 3}})
	require.Error(t, err)
}

func TestVerify_WrongClaimFails(t *testing.T) {
	seed := testSeed()
	leaves, ids := testLeaves(5, seed)
	root, proofs, err := BuildTree(leaves)
	require.NoError(t, err)

	// Player 0 committed to (1,1); any other claim fails.
	require.False(t, Verify([]byte(ids[0]), 2, 1, seed, proofs[0], root))
	require.False(t, Verify([]byte(ids[0]), 1, 2, seed, proofs[0], root))
	// Someone else's proof.
	require.False(t, Verify([]byte(ids[0]), 1, 1, seed, proofs[1], root))
	// Another player's identity with player 0's proof.
	require.False(t, Verify([]byte(ids[1]), 1, 1, seed, proofs[0], root))
	// Different seed (another game).
	other := sha256.Sum256([]byte("other game"))
	require.False(t, Verify([]byte(ids[0]), 1, 1, other[:], proofs[0], root))
}

func TestVerify_BitFlipsFail(t *testing.T) {
	seed := testSeed()
	leaves, ids := testLeaves(7, seed)
	root, proofs, err := BuildTree(leaves)
	require.NoError(t, err)

	const idx = 3
	proof := proofs[idx]
	require.True(t, Verify([]byte(ids[idx]), byte(idx%6+1), byte(idx%2+1), seed, proof, root))

	for p := range proof {
		for bit := 0; bit < HashSize*8; bit++ {
			mutated := make([][]byte, len(proof))
			for i := range proof {
				mutated[i] = append([]byte(nil), proof[i]...)
			}
			mutated[p][bit/8] ^= 1 << (bit % 8)
			require.Falsef(t, Verify([]byte(ids[idx]), byte(idx%6+1), byte(idx%2+1), seed, mutated, root), "proof[%d] bit %d", p, bit)
		}
	}

	for bit := 0; bit < HashSize*8; bit++ {
		leaf := append([]byte(nil), leaves[idx]...)
		leaf[bit/8] ^= 1 << (bit % 8)
		got, err := ComputeRoot(leaf, proof)
		require.NoError(t, err)
		require.NotEqualf(t, root, got, "leaf bit %d", bit)
	}
}

func TestVerify_MalformedInputs(t *testing.T) {
	seed := testSeed()
	leaves, ids := testLeaves(4, seed)
	root, proofs, err := BuildTree(leaves)
	require.NoError(t, err)

	require.False(t, Verify([]byte(ids[0]), 1, 1, seed, proofs[0], root[:31]))
	require.False(t, Verify(nil, 1, 1, seed, proofs[0], root))
	require.False(t, Verify([]byte(ids[0]), 1, 1, nil, proofs[0], root))

	short := [][]byte{proofs[0][0][:16], proofs[0][1]}
	require.False(t, Verify([]byte(ids[0]), 1, 1, seed, short, root))
}

func TestParseHash(t *testing.T) {
	h := bytes.Repeat([]byte{0xab}, HashSize)
	got, err := ParseHash(FormatHex(h))
	require.NoError(t, err)
	require.Equal(t, h, got)

	got, err = ParseHash("AB" + FormatHex(h)[4:])
	require.NoError(t, err)
	require.Equal(t, h, got)

	_, err = ParseHash("0xabc")
	require.Error(t, err)
	_, err = ParseHash("0xabcd")
	require.Error(t, err)
	_, err = ParseHex("")
	require.Error(t, err)
}

func FuzzVerify_SingleBitFlip(f *testing.F) {
	f.Add(uint8(5), uint8(0), uint16(0))
	f.Add(uint8(10), uint8(9), uint16(255))

	f.Fuzz(func(t *testing.T, n, idx uint8, bit uint16) {
		size := int(n%10) + 2
		i := int(idx) % size
		seed := testSeed()
		leaves, ids := testLeaves(size, seed)
		root, proofs, err := BuildTree(leaves)
		if err != nil {
			t.Fatalf("BuildTree: %v", err)
		}
		role, align := byte(i%6+1), byte(i%2+1)
		if !Verify([]byte(ids[i]), role, align, seed, proofs[i], root) {
			t.Fatalf("valid proof rejected")
		}

		proof := proofs[i]
		total := len(proof) * HashSize * 8
		if total == 0 {
			return
		}
		b := int(bit) % total
		proof[b/(HashSize*8)][(b%(HashSize*8))/8] ^= 1 << (b % 8)
		if Verify([]byte(ids[i]), role, align, seed, proof, root) {
			t.Fatalf("bit %d flip still verifies", b)
		}
	})
}
