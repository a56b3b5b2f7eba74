// Package covers extracts the first page of an archive into a standalone
// cover image served as static content.
package covers

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"

	"comicshelf/internal/archive"
	"comicshelf/pkg/utils"
)

var (
	ErrNoPages    = errors.New("no pages to take a cover from")
	ErrCoverWrite = errors.New("cover write failed")
)

// Extractor writes covers into Dir as <id><ext> and hands out references
// under URLPrefix.
type Extractor struct {
	Dir       string
	URLPrefix string
	// Width > 0 stores a JPEG thumbnail of that width instead of the raw page.
	Width int
}

func NewExtractor(dir, urlPrefix string, width int) *Extractor {
	return &Extractor{Dir: dir, URLPrefix: urlPrefix, Width: width}
}

// Extract reads pages[0] from r and stores it as the cover of comic id.
// It returns the public reference of the stored file.
func (x *Extractor) Extract(r archive.Reader, pages []archive.Entry, id string) (string, error) {
	if len(pages) == 0 {
		return "", ErrNoPages
	}

	first := pages[0]
	data, err := r.ReadEntry(first.Name)
	if err != nil {
		return "", fmt.Errorf("read cover entry %s: %w", first.Name, err)
	}

	ext := imageExt(data, first.Name)
	if x.Width > 0 {
		if data, err = thumbnail(data, x.Width); err != nil {
			return "", fmt.Errorf("thumbnail %s: %w", first.Name, err)
		}
		ext = ".jpg"
	}

	name := id + ext
	if err := utils.WriteFileAtomic(filepath.Join(x.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCoverWrite, err)
	}

	return path.Join(x.URLPrefix, name), nil
}

// Remove deletes the cover file behind ref. Missing files are not an error.
func (x *Extractor) Remove(ref string) error {
	name := path.Base(ref)
	if name == "." || name == "/" {
		return nil
	}
	if err := os.Remove(filepath.Join(x.Dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove cover %s: %w", name, err)
	}
	return nil
}

// imageExt prefers the sniffed format over the entry's own extension, since
// archives regularly carry PNGs named .jpg.
func imageExt(data []byte, entryName string) string {
	if m := mimetype.Detect(data); strings.HasPrefix(m.String(), "image/") && m.Extension() != "" {
		return m.Extension()
	}
	if ext := strings.ToLower(filepath.Ext(entryName)); ext != "" {
		return ext
	}
	return ".jpg"
}

func thumbnail(data []byte, width int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	if img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
