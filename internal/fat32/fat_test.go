package fat32

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFATViewReadWrite(t *testing.T) {
	img := buildImage()
	geo := testGeo(img)
	fat := NewFATView(img, geo)

	require.True(t, fat.IsFree(5))

	fat.WriteAllReplicas(5, 9)
	require.Equal(t, uint32(9), fat.Read(5))
	require.False(t, fat.IsFree(5))
	require.False(t, fat.IsEOC(5))

	fat.WriteAllReplicas(9, EOC)
	require.True(t, fat.IsEOC(9))
}

func TestFATViewWriteAllReplicasCoherence(t *testing.T) {
	img := buildImage()
	geo := testGeo(img)
	fat := NewFATView(img, geo)

	fat.WriteAllReplicas(3, 0x0FFFFFF8)

	for k := 0; k < testFATCount; k++ {
		require.Equal(t, uint32(0x0FFFFFF8), readFAT(img, k, 3))
	}
}

func TestFATViewEnumerateFree(t *testing.T) {
	img := buildImage()
	geo := testGeo(img)

	// buildImage marks cluster 2 (the root directory) EOC by default, so
	// this scan deliberately stays clear of it and exercises a window of
	// ordinary data clusters instead.
	setFAT(img, 4, 99)
	setFAT(img, 6, 0x0FFFFFF8)

	fat := NewFATView(img, geo)
	free := fat.EnumerateFree(3, 8)

	require.Equal(t, []uint32{3, 5, 7, 8}, free)
}

func TestFATViewReadMasksReservedBits(t *testing.T) {
	img := buildImage()
	geo := testGeo(img)

	setFAT(img, 10, 0xF000000A)

	fat := NewFATView(img, geo)
	require.Equal(t, uint32(0x0000000A), fat.Read(10))
}
