package archive

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comicshelf/internal/testsupport"
)

func TestIsArchive(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{name: "issue1.cbz", want: true},
		{name: "ISSUE1.CBZ", want: true},
		{name: "issue1.zip", want: true},
		{name: "issue1.cbr", want: true},
		{name: "issue1.rar", want: true},
		{name: "issue1.cb7", want: true},
		{name: "issue1.7z", want: true},
		{name: "issue1.cbt", want: true},
		{name: "issue1.tar", want: true},
		{name: "issue1.pdf", want: false},
		{name: "cover.jpg", want: false},
		{name: "README", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsArchive(tt.name))
		})
	}
}

func TestOpenZipListsEntriesWithoutExtracting(t *testing.T) {
	path := testsupport.WriteZip(t, filepath.Join(t.TempDir(), "foo.cbz"),
		testsupport.File{Name: "b.png", Data: []byte("bbbb")},
		testsupport.File{Name: "a.jpg", Data: []byte("aa")},
		testsupport.File{Name: "cover/"},
	)

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, []Entry{
		{Name: "b.png", Size: 4},
		{Name: "a.jpg", Size: 2},
		{Name: "cover/", IsDir: true},
	}, r.Entries())

	data, err := r.ReadEntry("a.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("aa"), data)
}

func TestReadEntryMissing(t *testing.T) {
	path := testsupport.WriteZip(t, filepath.Join(t.TempDir(), "foo.cbz"),
		testsupport.File{Name: "a.jpg", Data: []byte("aa")},
		testsupport.File{Name: "dir/"},
	)

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.ReadEntry("nope.jpg")
	assert.ErrorIs(t, err, ErrEntryNotFound)

	_, err = r.ReadEntry("dir/")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestOpenTar(t *testing.T) {
	path := testsupport.WriteTar(t, filepath.Join(t.TempDir(), "bar.cbt"),
		testsupport.File{Name: "pages/"},
		testsupport.File{Name: "pages/02.png", Data: []byte("two")},
		testsupport.File{Name: "pages/01.png", Data: []byte("one")},
	)

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	names := make([]string, 0)
	for _, e := range r.Entries() {
		if !e.IsDir {
			names = append(names, e.Name)
		}
	}
	assert.ElementsMatch(t, []string{"pages/02.png", "pages/01.png"}, names)

	data, err := r.ReadEntry("pages/01.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), data)

	_, err = r.ReadEntry("pages/03.png")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestOpenMislabelledArchiveFallsBackToContent(t *testing.T) {
	// a tar archive wearing a .cbz extension.
	path := testsupport.WriteTar(t, filepath.Join(t.TempDir(), "wrong.cbz"),
		testsupport.File{Name: "01.jpg", Data: []byte("jpeg")},
	)

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	data, err := r.ReadEntry("01.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), data)
}

func TestOpenUnreadable(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
	}{
		{name: "garbage cbz", path: testsupport.WriteGarbage(t, filepath.Join(dir, "bad.cbz"))},
		{name: "garbage cbr", path: testsupport.WriteGarbage(t, filepath.Join(dir, "bad.cbr"))},
		{name: "garbage cb7", path: testsupport.WriteGarbage(t, filepath.Join(dir, "bad.cb7"))},
		{name: "missing file", path: filepath.Join(dir, "missing.cbz")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Open(tt.path)
			assert.Nil(t, r)
			assert.ErrorIs(t, err, ErrUnreadable)
		})
	}
}
