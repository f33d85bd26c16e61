package fat32

import (
	"crypto/sha1"
)

// Outcome is the result of a single recovery request (component D's state
// model: SCAN -> {NO_MATCH | UNIQUE | AMBIGUOUS | VERIFY | SEARCH} ->
// {COMMIT | FAIL}).
type Outcome int

const (
	NotFound Outcome = iota
	Ambiguous
	Recovered
	RecoveredWithDigest
)

// emptySHA1 is the SHA-1 digest of the empty string, used as the
// pre-computed fast path for zero-size candidates instead of hashing an
// empty buffer every time.
var emptySHA1 = [20]byte{
	0xda, 0x39, 0xa3, 0xee, 0x5e, 0x6b, 0x4b, 0x0d, 0x32, 0x55,
	0xbf, 0xef, 0x95, 0x60, 0x18, 0x90, 0xaf, 0xd8, 0x07, 0x09,
}

// searchWindowMax is the hard-coded upper bound of the fragmented-search
// cluster window (spec.md §4.D.3 / §9 open question 4). It is not meant
// to be generalized.
const searchWindowMax = 11

// Engine implements component D: the three recovery strategies and their
// shared commit step, operating directly on a mutable disk image.
type Engine struct {
	disk []byte
	geo  Geometry
	fat  FATView
}

// NewEngine returns a recovery engine bound to disk, deriving a FAT view
// from geo.
func NewEngine(disk []byte, geo Geometry) *Engine {
	return &Engine{disk: disk, geo: geo, fat: NewFATView(disk, geo)}
}

func clusterCount(fileSize, bytesPerCluster uint32) uint32 {
	if fileSize == 0 {
		return 0
	}
	return (fileSize + bytesPerCluster - 1) / bytesPerCluster
}

// fitsContiguously reports whether a file of clusterCount clusters
// starting at firstCluster stays within the volume's addressable cluster
// range.
func (e *Engine) fitsContiguously(firstCluster, clusterCount uint32) bool {
	if clusterCount == 0 {
		return true
	}
	return firstCluster+clusterCount-1 <= e.geo.MaxClusterID
}

func (e *Engine) clusterBytes(c uint32) []byte {
	off := e.geo.ClusterOffset(c)
	return e.disk[off : off+int64(e.geo.BytesPerCluster)]
}

// materialize concatenates the payload of each cluster in seq, in order,
// trimming the final cluster to the remainder of fileSize (a full
// cluster's worth when the size divides evenly).
func (e *Engine) materialize(seq []uint32, fileSize uint32) []byte {
	buf := make([]byte, 0, fileSize)
	for i, c := range seq {
		data := e.clusterBytes(c)
		if i == len(seq)-1 {
			remaining := fileSize - uint32(len(buf))
			buf = append(buf, data[:remaining]...)
		} else {
			buf = append(buf, data...)
		}
	}
	return buf
}

// commit rewrites entry's name byte and reinstalls clusterSeq into every
// FAT replica. It is the only mutating step in the engine (spec.md §4.D).
func (e *Engine) commit(entry DirEntry, firstByte byte, clusterSeq []uint32) {
	e.disk[entry.Offset] = firstByte

	for i := 0; i < len(clusterSeq); i++ {
		if i+1 < len(clusterSeq) {
			e.fat.WriteAllReplicas(clusterSeq[i], clusterSeq[i+1])
		} else {
			e.fat.WriteAllReplicas(clusterSeq[i], EOC)
		}
	}
}

// RecoverUniqueContiguous implements §4.D.1: recovery with no digest,
// requiring exactly one deleted candidate and a contiguous layout that
// fits the volume.
func (e *Engine) RecoverUniqueContiguous(requested [11]byte, firstByte byte) (Outcome, error) {
	matches, err := ScanDeletedMatches(e.disk, e.geo, requested)
	if err != nil {
		return NotFound, err
	}

	switch len(matches) {
	case 0:
		return NotFound, nil
	default:
		if len(matches) > 1 {
			return Ambiguous, nil
		}
	}

	entry := matches[0]
	n := clusterCount(entry.FileSize, e.geo.BytesPerCluster)

	if n == 0 {
		e.commit(entry, firstByte, nil)
		return Recovered, nil
	}

	if !e.fitsContiguously(entry.FirstCluster, n) {
		return NotFound, nil
	}

	seq := make([]uint32, n)
	for i := range seq {
		seq[i] = entry.FirstCluster + uint32(i)
	}
	e.commit(entry, firstByte, seq)
	return Recovered, nil
}

// RecoverDigestContiguous implements §4.D.2: scan every deleted match,
// assuming a contiguous layout, and take the first whose SHA-1 equals
// digest. Scanning stops at the first hit; this does not require
// uniqueness (spec.md §9 open question 3).
func (e *Engine) RecoverDigestContiguous(requested [11]byte, firstByte byte, digest [20]byte) (Outcome, error) {
	matches, err := ScanDeletedMatches(e.disk, e.geo, requested)
	if err != nil {
		return NotFound, err
	}

	for _, entry := range matches {
		n := clusterCount(entry.FileSize, e.geo.BytesPerCluster)

		if entry.FileSize == 0 {
			if emptySHA1 != digest {
				continue
			}
			e.commit(entry, firstByte, nil)
			return RecoveredWithDigest, nil
		}

		if !e.fitsContiguously(entry.FirstCluster, n) {
			continue
		}
		seq := make([]uint32, n)
		for i := range seq {
			seq[i] = entry.FirstCluster + uint32(i)
		}
		if sha1.Sum(e.materialize(seq, entry.FileSize)) != digest {
			continue
		}
		e.commit(entry, firstByte, seq)
		return RecoveredWithDigest, nil
	}

	return NotFound, nil
}

// RecoverDigestArbitrary implements §4.D.3: for each deleted match, fix
// the surviving first cluster and depth-first search the free clusters in
// the bounded window [2, min(searchWindowMax, maxClusterID)] for a
// sequence whose materialized bytes hash to digest.
func (e *Engine) RecoverDigestArbitrary(requested [11]byte, firstByte byte, digest [20]byte) (Outcome, error) {
	matches, err := ScanDeletedMatches(e.disk, e.geo, requested)
	if err != nil {
		return NotFound, err
	}

	windowHi := uint32(searchWindowMax)
	if e.geo.MaxClusterID < windowHi {
		windowHi = e.geo.MaxClusterID
	}
	free := e.fat.EnumerateFree(2, windowHi)

	for _, entry := range matches {
		if entry.FileSize == 0 {
			if emptySHA1 == digest {
				e.commit(entry, firstByte, nil)
				return RecoveredWithDigest, nil
			}
			continue
		}

		required := clusterCount(entry.FileSize, e.geo.BytesPerCluster)
		if uint32(len(free)) < required {
			continue
		}
		if entry.FirstCluster > searchWindowMax {
			continue
		}

		pool := make([]uint32, 0, len(free))
		for _, c := range free {
			if c != entry.FirstCluster {
				pool = append(pool, c)
			}
		}

		seq := make([]uint32, 1, required)
		seq[0] = entry.FirstCluster
		visited := make([]bool, len(pool))

		found := e.searchSequence(pool, visited, seq, required, entry.FileSize, digest)
		if found != nil {
			e.commit(entry, firstByte, found)
			return RecoveredWithDigest, nil
		}
	}

	return NotFound, nil
}

// searchSequence performs the bounded DFS backtrack described in
// spec.md §4.D.3 and §9's "Search back-tracking without cycles" note: at
// each depth it walks pool in ascending cluster-id order, skipping
// visited entries, and checks the SHA-1 only once the sequence has
// reached full length.
func (e *Engine) searchSequence(pool []uint32, visited []bool, seq []uint32, required uint32, fileSize uint32, digest [20]byte) []uint32 {
	if uint32(len(seq)) == required {
		if sha1.Sum(e.materialize(seq, fileSize)) == digest {
			out := make([]uint32, len(seq))
			copy(out, seq)
			return out
		}
		return nil
	}

	for i, c := range pool {
		if visited[i] {
			continue
		}
		visited[i] = true
		seq = append(seq, c)

		if found := e.searchSequence(pool, visited, seq, required, fileSize, digest); found != nil {
			return found
		}

		seq = seq[:len(seq)-1]
		visited[i] = false
	}

	return nil
}
