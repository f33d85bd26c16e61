package fat32

import (
	"encoding/binary"
)

// testGeometry describes the fixture image used throughout this package's
// tests: 512-byte sectors, 1 sector per cluster (so a 512-byte cluster
// holds 16 directory entries), 2 FATs of 1 sector each, 32 reserved
// sectors, root cluster 2, and 30 data clusters (max cluster id 31) —
// comfortably covering the [2, 11] fragmented-search window plus extra
// headroom for contiguous test files.
const (
	testBytesPerSector    = 512
	testSectorsPerCluster = 1
	testReservedSectors   = 32
	testFATCount          = 2
	testFATSizeSectors    = 1
	testRootCluster       = 2
	testDataClusters      = 30
)

// buildImage returns a fresh, zeroed FAT32 image matching testGeometry,
// ready for a test to plant directory entries and cluster payloads into.
func buildImage() []byte {
	totalSectors := uint32(testReservedSectors + testFATCount*testFATSizeSectors + testDataClusters*testSectorsPerCluster)
	img := make([]byte, int(totalSectors)*testBytesPerSector)

	binary.LittleEndian.PutUint16(img[11:13], testBytesPerSector)
	img[13] = testSectorsPerCluster
	binary.LittleEndian.PutUint16(img[14:16], testReservedSectors)
	img[16] = testFATCount
	binary.LittleEndian.PutUint32(img[32:36], totalSectors)
	binary.LittleEndian.PutUint32(img[36:40], testFATSizeSectors)
	binary.LittleEndian.PutUint32(img[44:48], testRootCluster)
	copy(img[82:90], "FAT32   ")
	img[510] = 0x55
	img[511] = 0xAA

	// The root directory is a single cluster by default; mark its FAT
	// entry EOC so walkRootEntries terminates instead of reading a
	// zeroed (FREE) entry and wrapping cluster arithmetic around to a
	// bogus multi-terabyte offset. Tests that chain the root directory
	// across more than one cluster override this via setFAT.
	setFAT(img, testRootCluster, EOC)

	return img
}

func testGeo(img []byte) Geometry {
	geo, err := ReadGeometry(img)
	if err != nil {
		panic(err)
	}
	return geo
}

func fatAreaOffset() int64 {
	return int64(testReservedSectors) * testBytesPerSector
}

func dataAreaOffset() int64 {
	return int64(testReservedSectors+testFATCount*testFATSizeSectors) * testBytesPerSector
}

func clusterOffset(c uint32) int64 {
	return dataAreaOffset() + int64(c-2)*testBytesPerSector*testSectorsPerCluster
}

// setFAT writes value into cluster c's slot across every FAT replica
// directly, independent of the FATView under test.
func setFAT(img []byte, c uint32, value uint32) {
	for k := 0; k < testFATCount; k++ {
		off := fatAreaOffset() + int64(k)*testFATSizeSectors*testBytesPerSector + 4*int64(c)
		binary.LittleEndian.PutUint32(img[off:off+4], value)
	}
}

func readFAT(img []byte, replica int, c uint32) uint32 {
	off := fatAreaOffset() + int64(replica)*testFATSizeSectors*testBytesPerSector + 4*int64(c)
	return binary.LittleEndian.Uint32(img[off : off+4])
}

// rootEntrySlot returns the byte offset of entry index i (0-based) within
// the root directory's first (only, for these fixtures) cluster.
func rootEntrySlot(i int) int64 {
	return clusterOffset(testRootCluster) + int64(i)*DirEntrySize
}

// putDirEntry writes a complete 32-byte directory entry into img at the
// given root-directory slot index.
func putDirEntry(img []byte, slot int, name [11]byte, attr byte, firstCluster uint32, fileSize uint32) {
	off := rootEntrySlot(slot)
	copy(img[off:off+11], name[:])
	img[off+11] = attr
	binary.LittleEndian.PutUint16(img[off+20:off+22], uint16(firstCluster>>16))
	binary.LittleEndian.PutUint16(img[off+26:off+28], uint16(firstCluster&0xFFFF))
	binary.LittleEndian.PutUint32(img[off+28:off+32], fileSize)
}

// name83 builds a raw 11-byte on-disk name from a base and extension,
// space-padded, without going through CanonicalName (so tests can plant
// a leading 0xE5 tombstone byte directly).
func name83(first byte, base, ext string) [11]byte {
	var n [11]byte
	for i := range n {
		n[i] = ' '
	}
	n[0] = first
	copy(n[1:8], base)
	copy(n[8:11], ext)
	return n
}

// putDirEntryAtCluster writes a directory entry into slot i of an arbitrary
// data cluster, for tests exercising multi-cluster directory chains.
func putDirEntryAtCluster(img []byte, cluster uint32, slot int, name [11]byte, attr byte, firstCluster uint32, fileSize uint32) {
	off := clusterOffset(cluster) + int64(slot)*DirEntrySize
	copy(img[off:off+11], name[:])
	img[off+11] = attr
	binary.LittleEndian.PutUint16(img[off+20:off+22], uint16(firstCluster>>16))
	binary.LittleEndian.PutUint16(img[off+26:off+28], uint16(firstCluster&0xFFFF))
	binary.LittleEndian.PutUint32(img[off+28:off+32], fileSize)
}

func putClusterData(img []byte, cluster uint32, data []byte) {
	off := clusterOffset(cluster)
	copy(img[off:off+testBytesPerSector], data)
}
