package videos

import (
	"context"
)

// AssetKind names a flat permanent directory.
type AssetKind string

const (
	AssetVideo     AssetKind = "videos"
	AssetThumbnail AssetKind = "thumbnails"
)

// ParseAssetKind accepts only the permanent directory names.
func ParseAssetKind(s string) (AssetKind, bool) {
	switch k := AssetKind(s); k {
	case AssetVideo, AssetThumbnail:
		return k, true
	}
	return "", false
}

func (k AssetKind) Ext() string {
	if k == AssetThumbnail {
		return ".jpg"
	}
	return ".mp4"
}

func (k AssetKind) ContentType() string {
	if k == AssetThumbnail {
		return "image/jpeg"
	}
	return "video/mp4"
}

// Slot is a reserved permanent file name and the local path to write it at.
// ContentType starts as the kind's default and follows an adopted poster's real type.
type Slot struct {
	Kind        AssetKind
	Name        string
	Path        string
	ContentType string
}

type Storage interface {
	// Reserve returns ErrSlotTaken if id is already in use for kind.
	Reserve(kind AssetKind, id string) (*Slot, error)
	// Commit makes the written slot durable and returns its public URL.
	Commit(ctx context.Context, slot *Slot) (string, error)
	// Remove deletes a permanent file. Missing files are not an error.
	Remove(ctx context.Context, kind AssetKind, name string) error
	// Exists reports whether a permanent file is present. Malformed names never exist.
	Exists(ctx context.Context, kind AssetKind, name string) (bool, error)
	// URL is the public URL a committed file of that name has.
	URL(kind AssetKind, name string) string
}
