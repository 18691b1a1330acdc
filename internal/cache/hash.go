// Package cache implements the two-tier document cache of spec §4.7: an
// in-memory LRU keyed by (uri, content hash), and a persistent warm-start
// store that lets a workspace reload skip re-parsing unchanged files.
package cache

import "github.com/zeebo/blake3"

// ContentHash is the 256-bit blake3 digest of a document's UTF-8 bytes,
// used both as the in-memory cache key's second component and as an
// optional verification step on persistent-cache load.
type ContentHash [32]byte

// ComputeContentHash hashes data with blake3-256.
func ComputeContentHash(data []byte) ContentHash {
	sum := blake3.Sum256(data)
	return ContentHash(sum)
}

// String renders the hash as lowercase hex, used to name on-disk entry files.
func (h ContentHash) String() string {
	const hexDigits = "0123456789abcdef"
	buf := make([]byte, len(h)*2)
	for i, b := range h {
		buf[i*2] = hexDigits[b>>4]
		buf[i*2+1] = hexDigits[b&0x0f]
	}
	return string(buf)
}
