package erasure

import (
	"errors"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"

	"github.com/TheusHen/na/na/biguint"
	"github.com/TheusHen/na/na/hexenc"
)

var ErrManifest = errors.New("erasure: manifest does not match")

// Manifest records the layout and shard hashes of a protected blob so that
// corrupted shards can be told apart from good ones.
type Manifest struct {
	DataShards   int      `toml:"data_shards"`
	ParityShards int      `toml:"parity_shards"`
	Root         string   `toml:"root"`
	Hashes       []string `toml:"hashes"`
}

// Manifest describes a complete shard set.
func (c *Codec) Manifest(shards Shards) (Manifest, error) {
	if len(shards) != c.TotalShards() {
		return Manifest{}, ErrShardCount
	}
	hashes := make([][]byte, len(shards))
	for i, sh := range shards {
		if sh == nil {
			return Manifest{}, fmt.Errorf("%w: shard %d missing", ErrShardCount, i)
		}
		hashes[i] = HashShard(sh)
	}
	tree, err := buildMerkleTree(hashes)
	if err != nil {
		return Manifest{}, err
	}

	m := Manifest{
		DataShards:   c.dataShards,
		ParityShards: c.parityShards,
		Root:         hexenc.Encode(tree.root()),
		Hashes:       make([]string, len(hashes)),
	}
	for i, h := range hashes {
		m.Hashes[i] = hexenc.Encode(h)
	}
	return m, nil
}

// Codec builds the codec the manifest was written with.
func (m *Manifest) Codec() (*Codec, error) {
	return NewCodec(m.DataShards, m.ParityShards)
}

// tree decodes the shard hashes and checks them against the root.
func (m *Manifest) tree() (*merkleTree, error) {
	if len(m.Hashes) != m.DataShards+m.ParityShards {
		return nil, fmt.Errorf("%w: %d hashes for %d shards", ErrManifest, len(m.Hashes), m.DataShards+m.ParityShards)
	}
	hashes := make([][]byte, len(m.Hashes))
	for i, s := range m.Hashes {
		h, err := hexenc.DecodeString(s, "")
		if err != nil {
			return nil, fmt.Errorf("%w: hash %d: %w", ErrManifest, i, err)
		}
		hashes[i] = h
	}
	root, err := hexenc.DecodeString(m.Root, "")
	if err != nil {
		return nil, fmt.Errorf("%w: root: %w", ErrManifest, err)
	}
	tree, err := buildMerkleTree(hashes)
	if err != nil {
		return nil, err
	}
	if !biguint.Equals(tree.root(), root) {
		return nil, fmt.Errorf("%w: root", ErrManifest)
	}
	return tree, nil
}

// Check drops (sets to nil) every shard whose hash does not match and returns
// their indices. Recover can then treat them as lost.
func (m *Manifest) Check(shards Shards) ([]int, error) {
	tree, err := m.tree()
	if err != nil {
		return nil, err
	}
	if len(shards) != len(m.Hashes) {
		return nil, ErrShardCount
	}
	var dropped []int
	for i, sh := range shards {
		if sh == nil {
			continue
		}
		if !biguint.Equals(HashShard(sh), tree.leaves[i]) {
			shards[i] = nil
			dropped = append(dropped, i)
		}
	}
	return dropped, nil
}

// Proof returns the inclusion proof of shard i.
func (m *Manifest) Proof(i int) (Proof, error) {
	tree, err := m.tree()
	if err != nil {
		return Proof{}, err
	}
	if i >= len(m.Hashes) {
		return Proof{}, ErrMerkleIndexRange
	}
	return tree.proof(i)
}

func (m *Manifest) Load(r io.Reader) error {
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	return dec.Decode(m)
}

func (m *Manifest) Dump(w io.Writer) error {
	return toml.NewEncoder(w).Encode(m)
}
