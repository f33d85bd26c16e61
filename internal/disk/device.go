// Package disk presents the disk image as a single byte-addressable,
// read/write view, mapped directly into the process's address space.
//
// The on-disk geometry, the FAT replicas, and the root directory are all
// parsed and mutated as offsets into the slice returned by Bytes. There is
// exactly one Device per recovery request and exactly one owner of it; see
// internal/fat32 for the layout that is read through it.
package disk

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Device is a memory-mapped view of a disk image opened for read/write.
// Unlike a plain io.ReaderAt, writes through Bytes land directly on the
// backing file (MAP_SHARED) without an intervening syscall per write.
type Device struct {
	file *os.File
	data []byte
}

// Open maps path into memory for shared read/write access, mirroring the
// mmap(..., PROT_READ|PROT_WRITE, MAP_SHARED, ...) call a native
// recovery tool would make against the raw image.
func Open(path string) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open disk image: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat disk image: %w", err)
	}

	size := fi.Size()
	if size == 0 {
		f.Close()
		return nil, fmt.Errorf("disk image %q is empty", path)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to mmap disk image: %w", err)
	}

	return &Device{file: f, data: data}, nil
}

// Bytes returns the mapped region. The caller owns it exclusively for the
// lifetime of the Device; there is no internal locking because a single
// recovery request never shares it.
func (d *Device) Bytes() []byte {
	return d.data
}

// Size returns the length of the mapped region in bytes.
func (d *Device) Size() int64 {
	return int64(len(d.data))
}

// Sync flushes dirty pages back to the backing file. MAP_SHARED already
// makes writes visible to other mappers of the same file; Sync only
// matters for durability across a crash, which this tool does not
// otherwise promise.
func (d *Device) Sync() error {
	return unix.Msync(d.data, unix.MS_SYNC)
}

// Close unmaps the region and closes the underlying file.
func (d *Device) Close() error {
	if d.data != nil {
		if err := unix.Munmap(d.data); err != nil {
			return fmt.Errorf("failed to munmap disk image: %w", err)
		}
		d.data = nil
	}
	return d.file.Close()
}
