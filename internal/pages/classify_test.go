package pages

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"comicshelf/internal/archive"
)

func names(entries []archive.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		entries []archive.Entry
		want    []string
	}{
		{
			name: "drops directories and non images",
			entries: []archive.Entry{
				{Name: "b.png"},
				{Name: "a.jpg"},
				{Name: "cover/", IsDir: true},
				{Name: "ComicInfo.xml"},
				{Name: "thumbs.db"},
			},
			want: []string{"a.jpg", "b.png"},
		},
		{
			name: "extension match ignores case",
			entries: []archive.Entry{
				{Name: "02.WEBP"},
				{Name: "01.Jpeg"},
				{Name: "03.GIF"},
			},
			want: []string{"01.Jpeg", "02.WEBP", "03.GIF"},
		},
		{
			name: "byte-wise order",
			entries: []archive.Entry{
				{Name: "page10.jpg"},
				{Name: "page2.jpg"},
				{Name: "Page1.jpg"},
				{Name: "ch2/001.jpg"},
				{Name: "ch1/001.jpg"},
			},
			want: []string{"Page1.jpg", "ch1/001.jpg", "ch2/001.jpg", "page10.jpg", "page2.jpg"},
		},
		{
			name:    "directory with image-like name",
			entries: []archive.Entry{{Name: "scans.jpg", IsDir: true}, {Name: "x.png"}},
			want:    []string{"x.png"},
		},
		{
			name:    "nothing qualifies",
			entries: []archive.Entry{{Name: "readme.txt"}, {Name: "dir/", IsDir: true}},
			want:    []string{},
		},
		{
			name: "empty",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(Classify(tt.entries)))
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	entries := []archive.Entry{
		{Name: "z.png"}, {Name: "m.jpg"}, {Name: "a.gif"}, {Name: "notes.txt"}, {Name: "k.webp"},
	}
	orig := append([]archive.Entry(nil), entries...)

	first := Classify(entries)
	second := Classify(entries)
	assert.Equal(t, first, second)

	// the input slice is left as it was
	assert.Equal(t, orig, entries)
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"a.jpg":         "image/jpeg",
		"a.JPEG":        "image/jpeg",
		"dir/b.png":     "image/png",
		"c.gif":         "image/gif",
		"d.webp":        "image/webp",
		"e.bmp":         DefaultContentType,
		"no-extension":  DefaultContentType,
		"archive.jpg/x": DefaultContentType,
	}
	for name, want := range tests {
		assert.Equal(t, want, ContentType(name), name)
	}
}
