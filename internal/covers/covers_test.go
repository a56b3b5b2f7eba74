package covers

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comicshelf/internal/archive"
	"comicshelf/internal/testsupport"
)

func openFixture(t *testing.T, files ...testsupport.File) archive.Reader {
	t.Helper()

	path := testsupport.WriteZip(t, filepath.Join(t.TempDir(), "fixture.cbz"), files...)
	r, err := archive.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestExtractKeepsTrueFormat(t *testing.T) {
	pngData := testsupport.PNG(t, 4, 6)
	r := openFixture(t,
		// a PNG that claims to be a JPEG.
		testsupport.File{Name: "001.jpg", Data: pngData},
		testsupport.File{Name: "002.jpg", Data: testsupport.JPEG(t, 4, 6)},
	)

	dir := t.TempDir()
	x := NewExtractor(dir, "/covers", 0)

	ref, err := x.Extract(r, []archive.Entry{{Name: "001.jpg"}, {Name: "002.jpg"}}, "abc")
	require.NoError(t, err)
	assert.Equal(t, "/covers/abc.png", ref)

	data, err := os.ReadFile(filepath.Join(dir, "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, pngData, data)
}

func TestExtractThumbnail(t *testing.T) {
	r := openFixture(t, testsupport.File{Name: "cover.png", Data: testsupport.PNG(t, 400, 600)})

	dir := t.TempDir()
	x := NewExtractor(dir, "/covers/", 100)

	ref, err := x.Extract(r, []archive.Entry{{Name: "cover.png"}}, "thumb")
	require.NoError(t, err)
	assert.Equal(t, "/covers/thumb.jpg", ref)

	data, err := os.ReadFile(filepath.Join(dir, "thumb.jpg"))
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 150, cfg.Height)
}

func TestExtractNoPages(t *testing.T) {
	r := openFixture(t, testsupport.File{Name: "notes.txt", Data: []byte("x")})

	_, err := NewExtractor(t.TempDir(), "/covers", 0).Extract(r, nil, "id")
	assert.ErrorIs(t, err, ErrNoPages)
}

func TestExtractWriteFailure(t *testing.T) {
	r := openFixture(t, testsupport.File{Name: "1.png", Data: testsupport.PNG(t, 2, 2)})

	// a regular file where the covers directory should be.
	blocker := filepath.Join(t.TempDir(), "covers")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := NewExtractor(blocker, "/covers", 0).Extract(r, []archive.Entry{{Name: "1.png"}}, "id")
	assert.ErrorIs(t, err, ErrCoverWrite)
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "abc.png"), []byte("x"), 0o644))

	x := NewExtractor(dir, "/covers", 0)
	require.NoError(t, x.Remove("/covers/abc.png"))
	assert.NoFileExists(t, filepath.Join(dir, "abc.png"))

	assert.NoError(t, x.Remove("/covers/abc.png"))
}
