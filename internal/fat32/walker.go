package fat32

// walkRootEntries walks the root directory's cluster chain (component C)
// and invokes visit for every decoded entry except long-filename
// fragments, which are always skipped before any caller sees them.
//
// Per spec.md §9 open question 1, an UnusedTerminal entry (name[0]==0x00)
// does not stop the walk: the reference tool keeps scanning the rest of
// the cluster and the rest of the chain. This walker therefore never
// breaks on it either — it is visit's job to decide whether to skip it.
func walkRootEntries(disk []byte, geo Geometry, visit func(DirEntry)) error {
	entriesPerCluster := geo.DirEntriesPerCluster()
	fat := NewFATView(disk, geo)

	cluster := geo.RootCluster
	for cluster < EOCThreshold {
		clusterOff := geo.ClusterOffset(cluster)

		for i := uint32(0); i < entriesPerCluster; i++ {
			entryOff := clusterOff + int64(i)*DirEntrySize
			entry, err := decodeDirEntry(disk, entryOff)
			if err != nil {
				return err
			}

			if entry.IsLongName() {
				continue
			}

			visit(entry)
		}

		cluster = fat.Read(cluster)
	}

	return nil
}

// ListedEntry is one line of output for the -l (list root directory)
// request.
type ListedEntry struct {
	Name         string
	IsDirectory  bool
	Size         uint32
	FirstCluster uint32
}

// ListRoot returns every live entry in the root directory, in on-disk
// order. A deleted entry is excluded outright, whether or not it is a
// directory; a live directory is included and rendered with a trailing
// slash by the caller.
func ListRoot(disk []byte, geo Geometry) ([]ListedEntry, error) {
	var out []ListedEntry

	err := walkRootEntries(disk, geo, func(e DirEntry) {
		if e.IsUnusedTerminal() || e.IsDeleted() {
			return
		}
		out = append(out, ListedEntry{
			Name:         RenderName(e.Name),
			IsDirectory:  e.IsDirectory(),
			Size:         e.FileSize,
			FirstCluster: e.FirstCluster,
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ScanDeletedMatches returns, in on-disk order, every deleted regular-file
// entry whose name[1..11] matches requested[1..11] (component C's
// recovery scan mode). Any entry with the directory attribute bit set is
// excluded outright, whether or not it is also deleted: spec.md scopes
// directory recovery out entirely.
func ScanDeletedMatches(disk []byte, geo Geometry, requested [11]byte) ([]DirEntry, error) {
	var matches []DirEntry

	err := walkRootEntries(disk, geo, func(e DirEntry) {
		if e.IsUnusedTerminal() || e.IsDirectory() {
			return
		}
		if e.IsDeleted() && e.NameMatches(requested) {
			matches = append(matches, e)
		}
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}
