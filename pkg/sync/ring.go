package sync

import (
	"encoding/binary"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/spaolacci/murmur3"
)

// ring is a consistent hash ring over murmur3 hashes
type ring struct {
	points *treemap.Map

	// Cached, since treemap.Map.Min() is O(log n)
	first interface{}
}

// newRing places each entry on the ring at replicas points
func newRing(entries map[string]interface{}, replicas uint) *ring {
	points := treemap.NewWith(utils.Int64Comparator)
	for k, v := range entries {
		seed, _ := murmur3.Sum128([]byte(k))

		buf := make([]byte, 12)
		binary.LittleEndian.PutUint64(buf, seed)
		for i := uint32(0); i < uint32(replicas); i++ {
			binary.LittleEndian.PutUint32(buf[8:], i)
			point, _ := murmur3.Sum128(buf)
			points.Put(int64(point), v)
		}
	}

	_, first := points.Min()

	return &ring{
		points: points,
		first:  first,
	}
}

// shard returns the value of the first point at or after the key's hash,
// wrapping around to the start of the ring
func (r *ring) shard(key []byte) interface{} {
	raw, _ := murmur3.Sum128(key)
	if _, value := r.points.Ceiling(int64(raw)); value != nil {
		return value
	}
	return r.first
}
