package fat32

import (
	"encoding/binary"
	"fmt"

	"github.com/go-restruct/restruct"
)

// BootSectorSize is the length in bytes of the FAT32 boot sector.
const BootSectorSize = 512

// bootSector is the raw, on-disk FAT32 BIOS parameter block. Every field
// here corresponds byte-for-byte to the BPB as defined by the FAT
// specification; restruct decodes it field-by-field against raw bytes
// instead of reinterpreting a compiler-packed struct, so there is no
// alignment hazard to worry about.
type bootSector struct {
	JumpBoot          [3]byte
	OEMName           [8]byte
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumFATs           uint8
	RootEntryCount    uint16
	TotalSectors16    uint16
	Media             uint8
	FATSize16         uint16
	SectorsPerTrack   uint16
	NumHeads          uint16
	HiddenSectors     uint32
	TotalSectors32    uint32
	FATSize32         uint32
	ExtFlags          uint16
	FSVersion         uint16
	RootCluster       uint32
	FSInfo            uint16
	BackupBootSector  uint16
	Reserved          [12]byte
	DriveNumber       uint8
	Reserved1         uint8
	BootSig           uint8
	VolumeID          uint32
	VolumeLabel       [11]byte
	FSType            [8]byte
}

// Geometry is the derived, immutable description of a FAT32 volume's
// layout (component A). It is computed once per invocation from the boot
// sector and never mutated afterward.
type Geometry struct {
	BytesPerSector    uint32
	SectorsPerCluster uint32
	ReservedSectors   uint32
	FATCount          uint32
	FATSizeSectors    uint32
	RootCluster       uint32
	TotalSectors      uint32

	// Derived quantities, computed once in ReadGeometry.
	BytesPerCluster uint32
	FATOffsetBytes  int64
	DataOffsetBytes int64
	MaxClusterID    uint32
}

// ReadGeometry decodes the boot sector at offset 0 of disk and derives the
// geometry record every other component reads through. It fails fatally
// (component A's contract) if bytes_per_sector is zero or the computed
// data offset runs past the end of the image.
func ReadGeometry(disk []byte) (Geometry, error) {
	if len(disk) < BootSectorSize {
		return Geometry{}, fmt.Errorf("disk image too small to hold a boot sector: %d bytes", len(disk))
	}

	var bs bootSector
	if err := restruct.Unpack(disk[:BootSectorSize], binary.LittleEndian, &bs); err != nil {
		return Geometry{}, fmt.Errorf("failed to decode boot sector: %w", err)
	}

	if bs.BytesPerSector == 0 {
		return Geometry{}, fmt.Errorf("invalid boot sector: bytes per sector is zero")
	}

	totalSectors := uint32(bs.TotalSectors32)
	if totalSectors == 0 {
		totalSectors = uint32(bs.TotalSectors16)
	}

	g := Geometry{
		BytesPerSector:    uint32(bs.BytesPerSector),
		SectorsPerCluster: uint32(bs.SectorsPerCluster),
		ReservedSectors:   uint32(bs.ReservedSectors),
		FATCount:          uint32(bs.NumFATs),
		FATSizeSectors:    bs.FATSize32,
		RootCluster:       bs.RootCluster & 0x0FFFFFFF,
		TotalSectors:      totalSectors,
	}

	g.BytesPerCluster = g.SectorsPerCluster * g.BytesPerSector
	g.FATOffsetBytes = int64(g.ReservedSectors) * int64(g.BytesPerSector)
	g.DataOffsetBytes = int64(g.ReservedSectors+g.FATCount*g.FATSizeSectors) * int64(g.BytesPerSector)

	dataSectors := g.TotalSectors - g.ReservedSectors - g.FATCount*g.FATSizeSectors
	if g.SectorsPerCluster != 0 {
		g.MaxClusterID = dataSectors/g.SectorsPerCluster + 2 - 1
	}

	if g.DataOffsetBytes > int64(len(disk)) {
		return Geometry{}, fmt.Errorf("invalid boot sector: data region starts at %d, beyond image size %d", g.DataOffsetBytes, len(disk))
	}

	return g, nil
}

// DirEntriesPerCluster returns how many 32-byte directory entries fit in
// one cluster.
func (g Geometry) DirEntriesPerCluster() uint32 {
	return g.BytesPerCluster / DirEntrySize
}

// ClusterOffset returns the byte offset of the data region for cluster id c
// (clusters are numbered starting at 2).
func (g Geometry) ClusterOffset(c uint32) int64 {
	return g.DataOffsetBytes + int64(c-2)*int64(g.BytesPerCluster)
}
