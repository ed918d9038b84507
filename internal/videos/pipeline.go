package videos

import (
	"context"
	"io"

	"github.com/amankumarsingh77/vidhost/internal/media"
	"github.com/amankumarsingh77/vidhost/internal/models"
)

type UploadValidator interface {
	Validate(role models.FileRole, declaredMIME string) error
	ValidateFiles(files []*models.UploadFile) error
	ValidateInput(ctx context.Context, input *models.UploadInput) error
}

type Stager interface {
	Stage(ctx context.Context, role models.FileRole, originalName, mimeType string, body io.Reader) (*models.StagedFile, error)
	Release(f *models.StagedFile) error
}

type Prober interface {
	Probe(ctx context.Context, path string) (*models.ProbeResult, error)
}

type Transcoder interface {
	Transcode(ctx context.Context, spec media.TranscodeSpec) (*media.Job, error)
}

type Thumbnailer interface {
	ExtractFromVideo(ctx context.Context, videoPath, outputPath string, duration float64) error
	AdoptUserImage(ctx context.Context, stagedPath, outputPath string) error
}

// Pipeline groups the ingestion components the use case drives.
type Pipeline struct {
	Validator   UploadValidator
	Stager      Stager
	Prober      Prober
	Transcoder  Transcoder
	Thumbnailer Thumbnailer
	Profile     models.EncodingProfile
}
