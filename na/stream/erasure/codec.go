package erasure

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/klauspost/reedsolomon"
)

var (
	ErrTooManyLost   = errors.New("erasure: too many shards lost, cannot recover")
	ErrInvalidConfig = errors.New("erasure: invalid data/parity configuration")
	ErrShardCount    = errors.New("erasure: wrong number of shards")
	ErrCorrupt       = errors.New("erasure: recovered size prefix is invalid")
)

// sizePrefix is the length of the little-endian blob size stored ahead of the
// blob in the data shards.
const sizePrefix = 8

// Shards holds data shards followed by parity shards. A lost shard is nil.
type Shards [][]byte

// Missing returns the indices of nil shards.
func (s Shards) Missing() []int {
	var idx []int
	for i, sh := range s {
		if sh == nil {
			idx = append(idx, i)
		}
	}
	return idx
}

// Codec provides Reed-Solomon protection of blobs.
type Codec struct {
	enc          reedsolomon.Encoder
	dataShards   int
	parityShards int
}

// NewCodec creates a codec that tolerates the loss of parityShards shards.
func NewCodec(dataShards, parityShards int) (*Codec, error) {
	if dataShards <= 0 || parityShards <= 0 {
		return nil, ErrInvalidConfig
	}
	enc, err := reedsolomon.New(dataShards, parityShards)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &Codec{
		enc:          enc,
		dataShards:   dataShards,
		parityShards: parityShards,
	}, nil
}

func (c *Codec) DataShards() int   { return c.dataShards }
func (c *Codec) ParityShards() int { return c.parityShards }
func (c *Codec) TotalShards() int  { return c.dataShards + c.parityShards }

// Protect splits blob into data shards and computes parity.
func (c *Codec) Protect(blob []byte) (Shards, error) {
	buf := make([]byte, sizePrefix, sizePrefix+len(blob))
	binary.LittleEndian.PutUint64(buf, uint64(len(blob)))
	buf = append(buf, blob...)

	shards, err := c.enc.Split(buf)
	if err != nil {
		return nil, err
	}
	if err := c.enc.Encode(shards); err != nil {
		return nil, err
	}
	return Shards(shards), nil
}

// Verify reports whether the parity shards match the data shards. All shards
// must be present.
func (c *Codec) Verify(shards Shards) (bool, error) {
	if len(shards) != c.TotalShards() {
		return false, ErrShardCount
	}
	return c.enc.Verify(shards)
}

// Recover rebuilds lost data shards in place and returns the original blob.
func (c *Codec) Recover(shards Shards) ([]byte, error) {
	if len(shards) != c.TotalShards() {
		return nil, ErrShardCount
	}
	if err := c.enc.ReconstructData(shards); err != nil {
		if errors.Is(err, reedsolomon.ErrTooFewShards) {
			return nil, ErrTooManyLost
		}
		return nil, err
	}

	var joined []byte
	for _, sh := range shards[:c.dataShards] {
		joined = append(joined, sh...)
	}
	if len(joined) < sizePrefix {
		return nil, ErrCorrupt
	}
	size := binary.LittleEndian.Uint64(joined)
	if size > uint64(len(joined)-sizePrefix) {
		return nil, ErrCorrupt
	}
	return joined[sizePrefix : sizePrefix+int(size)], nil
}

// Rebuild reconstructs every missing shard, parity included, so the set can be
// stored again at full strength.
func (c *Codec) Rebuild(shards Shards) error {
	if len(shards) != c.TotalShards() {
		return ErrShardCount
	}
	if err := c.enc.Reconstruct(shards); err != nil {
		if errors.Is(err, reedsolomon.ErrTooFewShards) {
			return ErrTooManyLost
		}
		return err
	}
	return nil
}

// ShardSize returns the size of each shard for a blob of blobSize bytes.
func (c *Codec) ShardSize(blobSize int) int {
	n := blobSize + sizePrefix
	return (n + c.dataShards - 1) / c.dataShards
}

// Overhead returns the storage overhead ratio (e.g. 1.4 for 10+4).
func (c *Codec) Overhead() float64 {
	return float64(c.TotalShards()) / float64(c.dataShards)
}
