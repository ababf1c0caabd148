package erasure

import (
	"crypto/sha256"
	"errors"

	"github.com/TheusHen/na/na/biguint"
)

var (
	ErrMerkleEmpty      = errors.New("erasure: no shard hashes provided")
	ErrMerkleProofFail  = errors.New("erasure: proof verification failed")
	ErrMerkleIndexRange = errors.New("erasure: shard index out of range")
)

// merkleTree is a binary SHA-256 tree over shard hashes, stored as an array
// with the root at index 0.
type merkleTree struct {
	leaves [][]byte
	nodes  [][]byte
}

func buildMerkleTree(hashes [][]byte) (*merkleTree, error) {
	if len(hashes) == 0 {
		return nil, ErrMerkleEmpty
	}

	// Pad to a power of two with the hash of nothing.
	n := 1
	for n < len(hashes) {
		n *= 2
	}
	empty := sha256.Sum256(nil)
	leaves := make([][]byte, n)
	for i := range leaves {
		if i < len(hashes) {
			leaves[i] = hashes[i]
		} else {
			leaves[i] = empty[:]
		}
	}

	// Leaves occupy [n-1, 2n-2].
	nodes := make([][]byte, 2*n-1)
	copy(nodes[n-1:], leaves)
	for i := n - 2; i >= 0; i-- {
		nodes[i] = hashPair(nodes[2*i+1], nodes[2*i+2])
	}
	return &merkleTree{leaves: leaves, nodes: nodes}, nil
}

func (m *merkleTree) root() []byte { return m.nodes[0] }

// Proof lets a single shard be checked against a manifest root.
type Proof struct {
	Index    int
	Hash     []byte
	Siblings [][]byte // leaf to root
	IsLeft   []bool   // sibling is the left operand
}

func (m *merkleTree) proof(index int) (Proof, error) {
	n := len(m.leaves)
	if index < 0 || index >= n {
		return Proof{}, ErrMerkleIndexRange
	}

	p := Proof{Index: index, Hash: m.leaves[index]}
	for idx := n - 1 + index; idx > 0; idx = (idx - 1) / 2 {
		sibling := idx + 1
		if idx%2 == 0 {
			sibling = idx - 1
		}
		p.Siblings = append(p.Siblings, m.nodes[sibling])
		p.IsLeft = append(p.IsLeft, idx%2 == 0)
	}
	return p, nil
}

// VerifyProof checks that proof leads to root.
func VerifyProof(proof Proof, root []byte) error {
	if len(proof.Siblings) != len(proof.IsLeft) {
		return ErrMerkleProofFail
	}
	current := proof.Hash
	for i, sibling := range proof.Siblings {
		if proof.IsLeft[i] {
			current = hashPair(sibling, current)
		} else {
			current = hashPair(current, sibling)
		}
	}
	if !biguint.Equals(current, root) {
		return ErrMerkleProofFail
	}
	return nil
}

func hashPair(left, right []byte) []byte {
	h := sha256.New()
	h.Write(left)
	h.Write(right)
	return h.Sum(nil)
}

// HashShard returns the SHA-256 hash of a shard.
func HashShard(shard []byte) []byte {
	h := sha256.Sum256(shard)
	return h[:]
}
