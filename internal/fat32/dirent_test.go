package fat32

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderName(t *testing.T) {
	require.Equal(t, "HELLO.TXT", RenderName(name83('H', "ELLO", "TXT")))
	require.Equal(t, "FOLDER", RenderName(name83('F', "OLDER", "")))
	require.Equal(t, "MYFILE~1.DOC", RenderName(name83('M', "YFILE~1", "DOC")))
}

func TestCanonicalName(t *testing.T) {
	got, err := CanonicalName("HELLO.TXT")
	require.NoError(t, err)
	require.Equal(t, name83('H', "ELLO", "TXT"), got)

	got, err = CanonicalName("FOO")
	require.NoError(t, err)
	require.Equal(t, name83('F', "OO", ""), got)

	_, err = CanonicalName("WAYTOOLONGNAME.TXT")
	require.Error(t, err)

	_, err = CanonicalName("TOOLONG.TOOLONG")
	require.Error(t, err)
}

func TestDirEntryNameMatchesIgnoresFirstByte(t *testing.T) {
	deleted, err := decodeDirEntry(buildImageWithOneEntry(t, name83(DeletedMarker, "ELLO", "TXT")), rootEntrySlot(0))
	require.NoError(t, err)

	requested, err := CanonicalName("HELLO.TXT")
	require.NoError(t, err)

	require.True(t, deleted.NameMatches(requested))

	other, err := CanonicalName("WORLD.TXT")
	require.NoError(t, err)
	require.False(t, deleted.NameMatches(other))
}

func buildImageWithOneEntry(t *testing.T, name [11]byte) []byte {
	t.Helper()
	img := buildImage()
	putDirEntry(img, 0, name, 0x00, 3, 5)
	return img
}
