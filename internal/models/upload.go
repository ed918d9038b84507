package models

import (
	"io"
)

// FileRole is the part of an upload a file fills.
type FileRole string

const (
	RoleMedia  FileRole = "media"
	RolePoster FileRole = "poster"
)

// Multipart field names for each role.
const (
	FieldVideo     = "video"
	FieldThumbnail = "thumbnail"
)

// RoleForField maps a multipart field name to its role.
func RoleForField(field string) (FileRole, bool) {
	switch field {
	case FieldVideo:
		return RoleMedia, true
	case FieldThumbnail:
		return RolePoster, true
	default:
		return "", false
	}
}

type UploadInput struct {
	Title       string   `json:"title" form:"title" validate:"required,min=1,max=200"`
	Description string   `json:"description" form:"description" validate:"max=2000"`
	Category    Category `json:"category" form:"category" validate:"required,oneof=entertainment education music sports news gaming technology other"`
}

// UploadFile is one file part of a multipart request.
type UploadFile struct {
	Field    string
	Filename string
	MimeType string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// UploadRequest lives for the duration of one upload call.
type UploadRequest struct {
	RequestID string
	Principal *Principal
	Input     UploadInput
	Files     []*UploadFile
}

// File returns the single file with the given field name, if any.
func (r *UploadRequest) File(field string) *UploadFile {
	for _, f := range r.Files {
		if f.Field == field {
			return f
		}
	}
	return nil
}

type StagedFile struct {
	ID       string   `json:"id"`
	Path     string   `json:"path"`
	MimeType string   `json:"mime_type"`
	Role     FileRole `json:"role"`
	Size     int64    `json:"size"`
}
