package model

import (
	"encoding/json"

	"gorm.io/gorm"
)

// File is an uploaded file record. Name is the client-supplied file name,
// Path the stored name under the upload directory.
type File struct {
	gorm.Model
	Name string `json:"name" gorm:"not null"`
	Path string `json:"path" gorm:"size:191;uniqueIndex;not null"`
}

// URL returns the public path the file is served from.
func (f *File) URL() string {
	return "/files/" + f.Path
}

// MarshalJSON adds the derived url field to the serialized record.
func (f File) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
		Path string `json:"path"`
		URL  string `json:"url"`
	}{
		ID:   f.ID,
		Name: f.Name,
		Path: f.Path,
		URL:  f.URL(),
	})
}
