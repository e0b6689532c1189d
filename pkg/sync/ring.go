package sync

import (
	"encoding/binary"
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/spaolacci/murmur3"
)

// ring is a consistent hash ring over the stripe indexes [0, stripes).
type ring struct {
	hashRing *treemap.Map

	// first caches the value of the lowest entry, which keys hashing past the
	// last entry wrap around to. treemap.Map.Min() is O(log n).
	first int
}

// newRing places replicationFactor virtual nodes per stripe on the ring.
func newRing(stripes, replicationFactor uint) *ring {
	hashRing := treemap.NewWith(utils.Int64Comparator)
	for stripe := 0; stripe < int(stripes); stripe++ {
		stripeHash, _ := murmur3.Sum128([]byte(fmt.Sprintf("lock%d", stripe)))

		var seed [12]byte
		binary.LittleEndian.PutUint64(seed[:8], stripeHash)
		for replica := uint32(0); replica < uint32(replicationFactor); replica++ {
			binary.LittleEndian.PutUint32(seed[8:], replica)
			hashRing.Put(hashKey(seed[:]), stripe)
		}
	}

	r := &ring{hashRing: hashRing}
	if _, first := hashRing.Min(); first != nil {
		r.first = first.(int)
	}
	return r
}

// shard returns the stripe owning key.
func (r *ring) shard(key []byte) int {
	_, stripe := r.hashRing.Ceiling(hashKey(key))
	if stripe != nil {
		return stripe.(int)
	}
	return r.first
}

func hashKey(key []byte) int64 {
	h, _ := murmur3.Sum128(key)
	return int64(h)
}
