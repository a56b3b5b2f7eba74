package models

import "time"

// ComicRecord describes one indexed archive in the comics directory.
//
// Records are created once by the scanner and never updated afterwards;
// PageCount is the number of pages seen at indexing time and is only a hint.
type ComicRecord struct {
	ID        string    `json:"id"`
	FileName  string    `json:"fileName"` // base name, unique across the index
	FilePath  string    `json:"filePath"`
	Title     string    `json:"title"`
	Cover     string    `json:"cover"` // public path of the extracted cover image
	PageCount int       `json:"pageCount"`
	AddedAt   time.Time `json:"addedAt"`
	Tags      []string  `json:"tags"`
}
