package fat32

import "encoding/binary"

const (
	// entryMask keeps only the low 28 bits of a FAT32 entry; the top 4
	// bits are reserved and must be preserved on a real volume, but this
	// engine only ever writes values in [0, entryMask], so it never needs
	// to merge them back in.
	entryMask = 0x0FFFFFFF

	// FreeCluster marks an entry with no meaning assigned to it.
	FreeCluster = 0

	// EOCThreshold is the lowest value (low 28 bits) that denotes
	// end-of-chain. Any stored entry at or above this is a terminator,
	// not a forward pointer.
	EOCThreshold = 0x0FFFFFF8

	// EOC is the specific end-of-chain marker the engine writes during
	// commit.
	EOC = 0x0FFFFFF8
)

// FATView is a typed read/write view over every FAT replica on the volume
// (component B). Reads and writes never allocate; they are direct
// little-endian accesses into the backing disk image. EnumerateFree
// returns a newly allocated slice.
type FATView struct {
	disk []byte
	geo  Geometry
}

// NewFATView returns a view over disk using the already-derived geometry.
func NewFATView(disk []byte, geo Geometry) FATView {
	return FATView{disk: disk, geo: geo}
}

// replicaOffset returns the byte offset of cluster c's entry in FAT
// replica k.
func (v FATView) replicaOffset(k uint32, c uint32) int64 {
	return (int64(v.geo.ReservedSectors)+int64(k)*int64(v.geo.FATSizeSectors))*int64(v.geo.BytesPerSector) + 4*int64(c)
}

// Read returns the low-28-bit value stored for cluster c in the first FAT
// replica.
func (v FATView) Read(c uint32) uint32 {
	off := v.replicaOffset(0, c)
	return binary.LittleEndian.Uint32(v.disk[off:off+4]) & entryMask
}

// IsFree reports whether cluster c's FAT entry is FREE.
func (v FATView) IsFree(c uint32) bool {
	return v.Read(c) == FreeCluster
}

// IsEOC reports whether cluster c's FAT entry is an end-of-chain marker.
func (v FATView) IsEOC(c uint32) bool {
	return v.Read(c) >= EOCThreshold
}

// WriteAllReplicas writes value into cluster c's slot in every FAT
// replica, keeping them coherent the way a healthy volume requires.
func (v FATView) WriteAllReplicas(c uint32, value uint32) {
	value &= entryMask
	for k := uint32(0); k < v.geo.FATCount; k++ {
		off := v.replicaOffset(k, c)
		binary.LittleEndian.PutUint32(v.disk[off:off+4], value)
	}
}

// EnumerateFree returns, in ascending order, every cluster id in [lo, hi]
// whose FAT entry is currently FREE.
func (v FATView) EnumerateFree(lo, hi uint32) []uint32 {
	var free []uint32
	for c := lo; c <= hi; c++ {
		if v.IsFree(c) {
			free = append(free, c)
		}
	}
	return free
}
