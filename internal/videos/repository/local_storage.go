package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/amankumarsingh77/vidhost/internal/media"
	"github.com/amankumarsingh77/vidhost/internal/videos"
)

var assetNamePattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.(mp4|jpg)$`)

// localStorage keeps permanent files in flat per-kind directories under root.
type localStorage struct {
	root         string
	publicPrefix string
}

func NewLocalStorage(root, publicPrefix string) (videos.Storage, error) {
	s, err := newLocalStorage(root, publicPrefix)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func newLocalStorage(root, publicPrefix string) (*localStorage, error) {
	for _, kind := range []videos.AssetKind{videos.AssetVideo, videos.AssetThumbnail} {
		if err := os.MkdirAll(filepath.Join(root, string(kind)), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s dir: %w", kind, err)
		}
	}
	return &localStorage{
		root:         root,
		publicPrefix: strings.TrimRight(publicPrefix, "/"),
	}, nil
}

func (s *localStorage) path(kind videos.AssetKind, name string) string {
	return filepath.Join(s.root, string(kind), name)
}

func (s *localStorage) Reserve(kind videos.AssetKind, id string) (*videos.Slot, error) {
	name := id + kind.Ext()
	if !assetNamePattern.MatchString(name) {
		return nil, fmt.Errorf("invalid asset id %q", id)
	}
	p := s.path(kind, name)
	if _, err := os.Lstat(p); err == nil {
		return nil, videos.ErrSlotTaken
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to check slot: %w", err)
	}
	return &videos.Slot{Kind: kind, Name: name, Path: p, ContentType: kind.ContentType()}, nil
}

// Commit flushes the slot to disk. An empty file is never published.
func (s *localStorage) Commit(_ context.Context, slot *videos.Slot) (string, error) {
	f, err := os.Open(slot.Path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", slot.Name, err)
	}
	defer f.Close()

	if err = f.Sync(); err != nil {
		return "", fmt.Errorf("failed to sync %s: %w", slot.Name, err)
	}
	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", slot.Name, err)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("%s is empty", slot.Name)
	}
	return s.URL(slot.Kind, slot.Name), nil
}

func (s *localStorage) URL(kind videos.AssetKind, name string) string {
	return s.publicPrefix + "/" + string(kind) + "/" + name
}

func (s *localStorage) Exists(_ context.Context, kind videos.AssetKind, name string) (bool, error) {
	if _, ok := videos.ParseAssetKind(string(kind)); !ok || !assetNamePattern.MatchString(name) {
		return false, nil
	}
	info, err := os.Stat(s.path(kind, name))
	if err == nil {
		return info.Mode().IsRegular(), nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", name, err)
}

func (s *localStorage) Remove(_ context.Context, kind videos.AssetKind, name string) error {
	if !assetNamePattern.MatchString(name) {
		return fmt.Errorf("invalid asset name %q", name)
	}
	return media.RemoveFile(s.path(kind, name))
}
