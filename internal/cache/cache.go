// Package cache implements the memoization store REDUCE probes before
// recursing on any graph at or above the small-graph threshold (spec §4.E):
// a canonical key maps to a previously computed polynomial, so isomorphic
// subgraphs reached from different branches of the recursion are only
// solved once.
//
// The source this is grounded on (original_source/tuttex/cache.hpp) keeps
// entries in a raw byte buffer addressed by C pointers, with bucket lists
// threaded through pointer fields embedded in each entry. Spec §9 asks for
// exactly this shape re-architected around integer byte offsets instead of
// pointers, so that compaction and resizing only ever have to shift
// integers: the arena here is an owned []byte, an entry's location is an
// int offset into it, and each bucket is a []int of offsets in
// most-recently-used order (the move-to-front step is a slice mutation
// rather than a linked-list relink).
package cache

import (
	"math/rand"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"

	"github.com/fine-structures/tuttex/internal/canon"
	"github.com/fine-structures/tuttex/internal/poly"
)

// ErrCacheExhausted is returned by Store when a single entry cannot
// possibly fit within the arena's total capacity, no matter how much is
// evicted (spec §4.E step 1 of store, and spec §7's CacheExhausted error
// class: "store asks for > arena capacity").
var ErrCacheExhausted = errors.New("cache: entry exceeds arena capacity")

// ErrOutOfMemory is returned by Resize when the arena cannot be grown or
// shrunk as requested (spec §7's OutOfMemory class: "arena resize or
// auxiliary allocation").
var ErrOutOfMemory = errors.New("cache: arena resize failed")

// headerSize is the fixed width, in bytes, of the per-entry header written
// ahead of each entry's key and payload bytes in the arena.
const headerSize = 21

// entry header field layout within the arena, all little-endian:
//
//	[0:4]   size        uint32  total bytes of this entry, header included
//	[4]     dead        byte    0 = live, 1 = evicted (tombstoned, awaiting compaction)
//	[5:9]   hitCount    uint32
//	[9:13]  graphID     uint32
//	[13:17] keyLen      uint32
//	[17:21] payloadLen  uint32
const (
	offSize       = 0
	offDead       = 4
	offHitCount   = 5
	offGraphID    = 9
	offKeyLen     = 13
	offPayloadLen = 17
)

// Cache is a fixed-capacity, arena-backed store from canon.Key to a
// serialized poly.Poly and the graph id that produced it.
type Cache struct {
	arena  []byte
	nextP  int
	bufcap int

	buckets  [][]int // bucket index -> offsets, most-recently-used first
	nbuckets int

	hits, misses, collisions uint64
	numEntries               uint64

	replacement      float64
	minReplaceSize   int // graphs with N >= this are pinned; default = never pin
	randomReplace    bool
	rng              *rand.Rand
}

// New returns a cache with an arena of maxSize bytes and nbuckets buckets,
// mirroring the teacher's cache(uint64_t max_size, size_t nbs = 10000)
// constructor. minReplaceSize starts unset (no graph is ever too large to
// evict) and replacement starts at 0.3, matching the source's defaults.
func New(maxSize, nbuckets int) *Cache {
	if nbuckets <= 0 {
		nbuckets = 10000
	}
	return &Cache{
		arena:          make([]byte, maxSize),
		bufcap:         maxSize,
		buckets:        make([][]int, nbuckets),
		nbuckets:       nbuckets,
		numEntries:     0, // spec §9: the source never initializes this; we do
		replacement:    0.3,
		minReplaceSize: -1, // sentinel: no pinning
		rng:            rand.New(rand.NewSource(1)),
	}
}

func (c *Cache) bucketOf(k canon.Key) int {
	return int(xxhash.Sum64([]byte(k)) % uint64(c.nbuckets))
}

func headerAt(arena []byte, off int) []byte { return arena[off : off+headerSize] }

func getU32(b []byte, off int) uint32 {
	return uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24
}

func putU32(b []byte, off int, v uint32) {
	b[off] = byte(v)
	b[off+1] = byte(v >> 8)
	b[off+2] = byte(v >> 16)
	b[off+3] = byte(v >> 24)
}

func (c *Cache) entrySize(off int) int    { return int(getU32(headerAt(c.arena, off), offSize)) }
func (c *Cache) isDead(off int) bool      { return headerAt(c.arena, off)[offDead] == 1 }
func (c *Cache) hitCount(off int) uint32  { return getU32(headerAt(c.arena, off), offHitCount) }
func (c *Cache) graphID(off int) uint32   { return getU32(headerAt(c.arena, off), offGraphID) }
func (c *Cache) keyLen(off int) int       { return int(getU32(headerAt(c.arena, off), offKeyLen)) }
func (c *Cache) payloadLen(off int) int   { return int(getU32(headerAt(c.arena, off), offPayloadLen)) }

func (c *Cache) keyBytes(off int) []byte {
	start := off + headerSize
	return c.arena[start : start+c.keyLen(off)]
}

func (c *Cache) payloadBytes(off int) []byte {
	start := off + headerSize + c.keyLen(off)
	return c.arena[start : start+c.payloadLen(off)]
}

func (c *Cache) markDead(off int) { headerAt(c.arena, off)[offDead] = 1 }

func (c *Cache) setHitCount(off int, h uint32) { putU32(headerAt(c.arena, off), offHitCount, h) }

// moveToFront relocates off to the head of bucket b's usage list.
func moveToFront(bucket []int, off int) []int {
	for i, o := range bucket {
		if o == off {
			copy(bucket[1:i+1], bucket[:i])
			bucket[0] = off
			return bucket
		}
	}
	return bucket
}

// Lookup implements spec §4.E's lookup(K): on a match it bumps hit_count,
// moves the entry to the front of its bucket, and deserializes the stored
// polynomial; on exhaustion it counts a miss.
func (c *Cache) Lookup(key canon.Key) (p poly.Poly, id uint32, ok bool) {
	b := c.bucketOf(key)
	bucket := c.buckets[b]
	keyBytes := []byte(key)
	for _, off := range bucket {
		if string(c.keyBytes(off)) == string(keyBytes) {
			dp, _, err := poly.Deserialize(c.payloadBytes(off))
			if err != nil {
				// A corrupt entry can never legitimately occur; treat it
				// as a miss rather than propagating a decode error from a
				// pure lookup.
				break
			}
			id = c.graphID(off)
			c.setHitCount(off, c.hitCount(off)+1)
			c.buckets[b] = moveToFront(bucket, off)
			c.hits++
			return dp, id, true
		}
		c.collisions++
	}
	c.misses++
	return poly.Poly{}, 0, false
}

// Store implements spec §4.E's store(K, P, id): appends a new entry at the
// arena frontier, evicting and compacting first if necessary, and pushes it
// to the front of its bucket.
func (c *Cache) Store(key canon.Key, p poly.Poly, id uint32) error {
	keyBytes := []byte(key)
	payload := p.Serialize(nil)
	size := headerSize + len(keyBytes) + len(payload)

	if size > c.bufcap {
		return ErrCacheExhausted
	}
	for c.nextP+size > c.bufcap {
		if c.randomReplace {
			c.evictRandom()
		} else {
			c.evictUnused()
		}
		c.compact()
	}

	off := c.nextP
	c.nextP += size
	h := headerAt(c.arena, off)
	putU32(h, offSize, uint32(size))
	h[offDead] = 0
	putU32(h, offHitCount, 0)
	putU32(h, offGraphID, id)
	putU32(h, offKeyLen, uint32(len(keyBytes)))
	putU32(h, offPayloadLen, uint32(len(payload)))
	copy(c.arena[off+headerSize:], keyBytes)
	copy(c.arena[off+headerSize+len(keyBytes):], payload)

	b := c.bucketOf(key)
	c.buckets[b] = append([]int{off}, c.buckets[b]...)
	c.numEntries++
	return nil
}

// pinned reports whether the entry at off must survive eviction: spec §4.E,
// "entries representing graphs with N >= min_replace_size are pinned".
func (c *Cache) pinned(off int) bool {
	if c.minReplaceSize < 0 {
		return false
	}
	n := canon.GraphSize(canon.Key(c.keyBytes(off)))
	return n >= c.minReplaceSize
}

// evictUnused is the usage-aware default eviction mode: repeatedly remove
// every unpinned entry with hit_count < h, for h = 1, 2, ..., until the
// removed bytes reach replacement * current usage. The source's loop has no
// upper bound on h; capped here at one past the highest hit count present,
// since beyond that a pass can never remove anything further and would spin
// forever if the pinned set alone exceeds the target fraction.
func (c *Cache) evictUnused() {
	origSize := c.nextP
	if origSize == 0 {
		return
	}
	target := c.replacement * float64(origSize)

	maxHit := uint32(0)
	for _, bucket := range c.buckets {
		for _, off := range bucket {
			if hc := c.hitCount(off); hc > maxHit {
				maxHit = hc
			}
		}
	}

	var removed float64
	for h := uint32(1); h <= maxHit+1 && removed < target; h++ {
		for bi, bucket := range c.buckets {
			kept := bucket[:0]
			for _, off := range bucket {
				if c.hitCount(off) < h && !c.pinned(off) {
					removed += float64(c.entrySize(off))
					c.markDead(off)
					c.numEntries--
					continue
				}
				kept = append(kept, off)
			}
			c.buckets[bi] = kept
		}
	}
}

// evictRandom is the random eviction mode: each unpinned entry is dropped
// independently with probability replacement.
func (c *Cache) evictRandom() {
	for bi, bucket := range c.buckets {
		kept := bucket[:0]
		for _, off := range bucket {
			if !c.pinned(off) && c.rng.Float64() < c.replacement {
				c.markDead(off)
				c.numEntries--
				continue
			}
			kept = append(kept, off)
		}
		c.buckets[bi] = kept
	}
}

// compact slides every live entry down over the holes left by evicted ones
// in a single left-to-right pass, then rewrites the offsets recorded in
// every bucket list (spec §4.E, invariant iii).
func (c *Cache) compact() {
	remap := make(map[int]int)
	write := 0
	for read := 0; read < c.nextP; {
		size := c.entrySize(read)
		if !c.isDead(read) {
			if write != read {
				copy(c.arena[write:write+size], c.arena[read:read+size])
			}
			remap[read] = write
			write += size
		}
		read += size
	}
	c.nextP = write

	for bi, bucket := range c.buckets {
		for i, off := range bucket {
			bucket[i] = remap[off]
		}
		c.buckets[bi] = bucket
	}
}

// Resize replaces the arena with one of newSize bytes, refusing to shrink
// below the bytes currently in use (spec §4.E, "not below current usage").
func (c *Cache) Resize(newSize int) error {
	if c.nextP > newSize {
		return errors.Wrap(ErrOutOfMemory, "cannot resize below current usage")
	}
	fresh := make([]byte, newSize)
	copy(fresh, c.arena[:c.nextP])
	c.arena = fresh
	c.bufcap = newSize
	return nil
}

// Rebucket reassigns every live entry into a fresh bucket array of size nbs,
// used when the caller wants a different load factor (spec §4.E,
// "Rebucketing").
func (c *Cache) Rebucket(nbs int) {
	fresh := make([][]int, nbs)
	for _, bucket := range c.buckets {
		for _, off := range bucket {
			key := canon.Key(c.keyBytes(off))
			b := int(xxhash.Sum64([]byte(key)) % uint64(nbs))
			fresh[b] = append(fresh[b], off)
		}
	}
	c.buckets = fresh
	c.nbuckets = nbs
}

// Clear empties the cache without shrinking the arena.
func (c *Cache) Clear() {
	c.nextP = 0
	c.numEntries = 0
	for i := range c.buckets {
		c.buckets[i] = nil
	}
}

func (c *Cache) ResetStats() { c.hits, c.misses, c.collisions = 0, 0, 0 }

func (c *Cache) SetReplacement(r float64)   { c.replacement = r }
func (c *Cache) SetRandomReplacement()      { c.randomReplace = true }
func (c *Cache) SetReplaceSize(n int)       { c.minReplaceSize = n }
func (c *Cache) ReplaceSize() int           { return c.minReplaceSize }

func (c *Cache) NumHits() uint64       { return c.hits }
func (c *Cache) NumMisses() uint64     { return c.misses }
func (c *Cache) NumCollisions() uint64 { return c.collisions }
func (c *Cache) NumEntries() uint64    { return c.numEntries }
func (c *Cache) NumBuckets() int       { return c.nbuckets }
func (c *Cache) Size() int             { return c.nextP }
func (c *Cache) Capacity() int         { return c.bufcap }

func (c *Cache) BucketLength(b int) int { return len(c.buckets[b]) }

func (c *Cache) MinBucketSize() int {
	min := -1
	for i := range c.buckets {
		l := c.BucketLength(i)
		if min < 0 || l < min {
			min = l
		}
	}
	if min < 0 {
		return 0
	}
	return min
}

func (c *Cache) MaxBucketSize() int {
	max := 0
	for i := range c.buckets {
		if l := c.BucketLength(i); l > max {
			max = l
		}
	}
	return max
}

func (c *Cache) CountBucketsSized(lo, hi int) int {
	count := 0
	for i := range c.buckets {
		l := c.BucketLength(i)
		if l >= lo && l <= hi {
			count++
		}
	}
	return count
}

// Density is the number of entries per byte currently used, the same ratio
// the source exposes for cache-tuning diagnostics.
func (c *Cache) Density() float64 {
	if c.nextP == 0 {
		return 0
	}
	return float64(c.numEntries) / float64(c.nextP)
}
