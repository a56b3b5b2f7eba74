package archive

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSevenZipListsEntries(t *testing.T) {
	r, err := Open(filepath.Join("testdata", "pages.cb7"))
	require.NoError(t, err)
	defer r.Close()

	require.IsType(t, &sevenZipReader{}, r)
	assert.Equal(t, []Entry{
		{Name: "pages/", IsDir: true},
		{Name: "pages/001.jpg", Size: 10},
		{Name: "pages/002.png", Size: 12},
		{Name: "notes.txt", Size: 17},
	}, r.Entries())
}

func TestSevenZipReadEntry(t *testing.T) {
	r, err := Open(filepath.Join("testdata", "pages.cb7"))
	require.NoError(t, err)
	defer r.Close()

	tests := []struct {
		name string
		want string
	}{
		{name: "notes.txt", want: "scanned by nobody"},
		{name: "pages/002.png", want: "second page!"},
		{name: "pages/001.jpg", want: "first page"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := r.ReadEntry(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestSevenZipReadEntryMissing(t *testing.T) {
	r, err := Open(filepath.Join("testdata", "pages.cb7"))
	require.NoError(t, err)
	defer r.Close()

	_, err = r.ReadEntry("pages/003.png")
	assert.ErrorIs(t, err, ErrEntryNotFound)

	_, err = r.ReadEntry("pages/")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}
