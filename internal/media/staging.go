package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/amankumarsingh77/vidhost/internal/models"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)

// Stager owns the temporary namespace uploads land in before processing.
type Stager struct {
	dir       string
	validator *Validator
}

func NewStager(dir string, validator *Validator) (*Stager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging dir: %w", err)
	}
	return &Stager{dir: dir, validator: validator}, nil
}

func (s *Stager) Dir() string {
	return s.dir
}

// Stage writes body to a fresh temp file. The original name only contributes its extension.
func (s *Stager) Stage(ctx context.Context, role models.FileRole, originalName, mimeType string, body io.Reader) (*models.StagedFile, error) {
	if err := s.validator.Validate(role, mimeType); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(originalName))
	if !extPattern.MatchString(ext) {
		ext = ""
	}
	path := filepath.Join(s.dir, id+ext)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, Fail(KindIO, err, "create staged file")
	}

	limit := s.validator.MaxPayload()
	n, copyErr := io.Copy(f, io.LimitReader(&ctxReader{ctx: ctx, r: body}, limit+1))
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		_ = RemoveFile(path)
		if ctx.Err() != nil {
			return nil, Fail(KindCanceled, copyErr, "staging interrupted")
		}
		return nil, Fail(KindIO, copyErr, "write staged file")
	case closeErr != nil:
		_ = RemoveFile(path)
		return nil, Fail(KindIO, closeErr, "close staged file")
	case n > limit:
		_ = RemoveFile(path)
		return nil, Reject(CodePayloadTooLarge, fmt.Sprintf("exceeds %d bytes", limit))
	}

	staged := &models.StagedFile{
		ID:       id,
		Path:     path,
		MimeType: mimeType,
		Role:     role,
		Size:     n,
	}
	if err = s.validator.Inspect(staged); err != nil {
		_ = RemoveFile(path)
		return nil, err
	}
	return staged, nil
}

// Release deletes a staged file. Releasing twice is fine.
func (s *Stager) Release(f *models.StagedFile) error {
	if f == nil {
		return nil
	}
	if err := RemoveFile(f.Path); err != nil {
		return Fail(KindIO, err, "release %s", f.ID)
	}
	return nil
}

// SweepStale removes regular files in the staging dir not modified within maxAge.
func (s *Stager) SweepStale(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read staging dir: %w", err)
	}
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	var errs error
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				errs = multierr.Append(errs, err)
			}
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err = RemoveFile(filepath.Join(s.dir, entry.Name())); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		removed++
	}
	return removed, errs
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
