package fat32

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/go-restruct/restruct"
)

const (
	// DirEntrySize is the fixed size, in bytes, of every FAT32 directory
	// entry (both 8.3 entries and LFN fragments).
	DirEntrySize = 32

	// DeletedMarker is the sentinel written over name[0] of a tombstoned
	// entry.
	DeletedMarker = 0xE5

	// UnusedTerminalMarker marks an entry, and every entry after it in
	// the same cluster, as never having been used.
	UnusedTerminalMarker = 0x00

	// LongNameAttr identifies a long-filename fragment.
	LongNameAttr = 0x0F

	// DirectoryAttr identifies a subdirectory entry.
	DirectoryAttr = 0x10
)

// rawDirEntry is the on-disk 32-byte directory entry, decoded field by
// field by restruct rather than through a reinterpreted packed struct.
type rawDirEntry struct {
	Name          [11]byte
	Attr          uint8
	NTRes         uint8
	CrtTimeTenth  uint8
	CrtTime       uint16
	CrtDate       uint16
	LstAccDate    uint16
	FirstClusterH uint16
	WrtTime       uint16
	WrtDate       uint16
	FirstClusterL uint16
	FileSize      uint32
}

// DirEntry is a decoded root-directory entry plus its absolute byte
// offset within the disk image, which the recovery engine's commit step
// needs in order to mutate it in place.
//
// There is deliberately no single "Kind" enum with one fixed precedence
// order: the reference tool classifies an entry differently depending on
// whether it is listing or recovering. Listing treats a deleted entry as
// excluded outright, directory or not; recovery treats a directory-typed
// entry as excluded outright, deleted or not. IsUnusedTerminal,
// IsLongName, IsDirectory, and IsDeleted are independent predicates —
// callers compose them in the order their mode requires.
type DirEntry struct {
	Offset       int64
	Name         [11]byte
	Attr         uint8
	FirstCluster uint32
	FileSize     uint32
}

// IsUnusedTerminal reports whether name[0] is the never-used sentinel.
func (e DirEntry) IsUnusedTerminal() bool { return e.Name[0] == UnusedTerminalMarker }

// IsLongName reports whether this entry is a long-filename fragment.
func (e DirEntry) IsLongName() bool { return e.Attr == LongNameAttr }

// IsDirectory reports whether the subdirectory attribute bit is set,
// regardless of whether the entry has also been deleted.
func (e DirEntry) IsDirectory() bool { return e.Attr&DirectoryAttr != 0 }

// IsDeleted reports whether name[0] carries the tombstone marker.
func (e DirEntry) IsDeleted() bool { return e.Name[0] == DeletedMarker }

// decodeDirEntry decodes the 32 raw bytes at disk[offset:] into a DirEntry.
func decodeDirEntry(disk []byte, offset int64) (DirEntry, error) {
	var raw rawDirEntry
	if err := restruct.Unpack(disk[offset:offset+DirEntrySize], binary.LittleEndian, &raw); err != nil {
		return DirEntry{}, err
	}

	return DirEntry{
		Offset:       offset,
		Name:         raw.Name,
		Attr:         raw.Attr,
		FirstCluster: (uint32(raw.FirstClusterH)<<16 | uint32(raw.FirstClusterL)) & entryMask,
		FileSize:     raw.FileSize,
	}, nil
}

// NameMatches reports whether e's name[1..11] (the 10 bytes that survive
// deletion) equals the suffix of the requested canonical 11-byte name.
// The first byte is excluded from both sides because it was clobbered by
// the 0xE5 delete mark.
func (e DirEntry) NameMatches(requested [11]byte) bool {
	return bytes.Equal(e.Name[1:], requested[1:])
}

// RenderName formats e's raw 11-byte name the way spec.md §6 describes:
// the base is right-trimmed of spaces, and the extension, if non-blank,
// is appended behind a dot. The two halves are trimmed independently
// (rather than via one TrimRight over all 11 bytes), mirroring the
// two-cursor walk in nyufile.cpp's printName.
func RenderName(name [11]byte) string {
	base := string(name[:8])
	base = base[:len(strings.TrimRight(base, " "))]

	ext := string(name[8:11])
	ext = ext[:len(strings.TrimRight(ext, " "))]

	if ext == "" {
		return base
	}
	return base + "." + ext
}
