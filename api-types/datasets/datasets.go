package datasets

import (
	"github.com/forgeml/matforge-api-types/internal/utils/cmp"
	"github.com/forgeml/matforge-api-types/misc/rfctime"
)

type Summary struct {
	DatasetId   string          `json:"datasetId"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	CreatedAt   rfctime.RFC3339 `json:"createdAt"`
}

func (s Summary) Equal(o Summary) bool {
	return s.DatasetId == o.DatasetId &&
		s.Name == o.Name &&
		s.Description == o.Description &&
		s.CreatedAt.Equal(o.CreatedAt)
}

// Spec is the payload creating a new dataset.
type Spec struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// FileEntry is one uploaded file of a dataset.
type FileEntry struct {
	Path       string          `json:"path"`
	Size       int64           `json:"size"`
	UploadedAt rfctime.RFC3339 `json:"uploadedAt"`
}

func (f FileEntry) Equal(o FileEntry) bool {
	return f.Path == o.Path &&
		f.Size == o.Size &&
		f.UploadedAt.Equal(o.UploadedAt)
}

type FileList struct {
	Files []FileEntry `json:"files"`
}

func (l FileList) Equal(o FileList) bool {
	return cmp.SliceEqualUnordered(l.Files, o.Files)
}
