package fat32

import (
	"fmt"
	"strings"
)

// maxNameLen is 8 + '.' + 3.
const maxNameLen = 12

// CanonicalName converts a user-supplied 8.3 filename into its canonical
// 11-byte, space-padded on-disk form (spec.md §4.E). Names without a '.'
// are padded to 8 characters then 3 spaces; names with a '.' are split
// and each side is padded independently. Like nyufile.cpp's parseCMD,
// this does not case-fold: the caller is expected to pass an already
// upper-case name, matched byte-for-byte against the on-disk entry.
func CanonicalName(name string) ([11]byte, error) {
	var out [11]byte

	if len(name) > maxNameLen {
		return out, fmt.Errorf("name %q longer than 8.3 allows", name)
	}

	base, ext, _ := strings.Cut(name, ".")
	if len(base) > 8 || len(ext) > 3 {
		return out, fmt.Errorf("name %q does not fit the 8.3 format", name)
	}

	for i := range out {
		out[i] = ' '
	}
	copy(out[0:8], base)
	copy(out[8:11], ext)

	return out, nil
}
