// Package erasure spreads sealed blobs over Reed-Solomon shards.
//
// With D data shards and P parity shards any P shards may be lost and the
// blob is still recovered. The blob length travels inside the shards as an
// 8-byte little-endian prefix, so recovery needs nothing but the shards.
//
// Shards carry no authentication of their own. Protect sealed containers
// (see package stream) and let opening them detect corruption.
package erasure
