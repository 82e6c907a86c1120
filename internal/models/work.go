package models

// Work represents a single catalog record: one published piece of content
// (an image set, a novel or a playable game) plus its display metadata.
type Work struct {
	ID          string      `json:"id"`
	Type        WorkType    `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Tags        []string    `json:"tags"`
	Cover       string      `json:"cover"`
	Content     WorkContent `json:"content"`
	CreatedAt   string      `json:"createdAt"`
}

// WorkType represents valid work types
type WorkType string

const (
	WorkTypeImage WorkType = "image"
	WorkTypeNovel WorkType = "novel"
	WorkTypeGame  WorkType = "game"
)

// IsValid reports whether the work type is one of the supported types.
func (t WorkType) IsValid() bool {
	switch t {
	case WorkTypeImage, WorkTypeNovel, WorkTypeGame:
		return true
	default:
		return false
	}
}

// WorkContent is the type-dependent payload of a work. Exactly one variant
// is populated, matching the work's type; the zero value marshals as "{}".
type WorkContent struct {
	// Images holds gallery URLs for image works.
	Images []string `json:"images,omitempty"`
	// File holds the text file URL for novel works.
	File string `json:"file,omitempty"`
	// PlayURL holds the playable page URL for game works.
	PlayURL string `json:"playUrl,omitempty"`
}

// ContentForUpload builds the content variant referencing an uploaded asset
// URL according to the work type.
func ContentForUpload(workType WorkType, url string) WorkContent {
	switch workType {
	case WorkTypeImage:
		return WorkContent{Images: []string{url}}
	case WorkTypeNovel:
		return WorkContent{File: url}
	case WorkTypeGame:
		return WorkContent{PlayURL: url}
	default:
		return WorkContent{}
	}
}

// CreateWorkInput carries the caller-supplied fields for a new work.
// Description, Tags, Cover and Content are optional; the repository fills
// defaults for anything left empty.
type CreateWorkInput struct {
	Type        WorkType    `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Tags        []string    `json:"tags"`
	Cover       string      `json:"cover"`
	Content     WorkContent `json:"content"`
}

// UploadResult describes a stored upload returned by the upload endpoint.
type UploadResult struct {
	Type         WorkType `json:"type"`
	URL          string   `json:"url"`
	OriginalName string   `json:"originalName"`
	Size         int64    `json:"size"`
}
