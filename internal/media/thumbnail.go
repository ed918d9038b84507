package media

import (
	"context"
	"os"
	"time"

	"github.com/disintegration/imaging"
)

type ThumbnailConfig struct {
	Binary        string
	Timeout       time.Duration
	OffsetPercent float64
	Width         int
	Height        int
	Quality       int
}

// Thumbnailer produces the poster image of a video.
type Thumbnailer struct {
	cfg ThumbnailConfig
}

func NewThumbnailer(cfg ThumbnailConfig) *Thumbnailer {
	if cfg.Binary == "" {
		cfg.Binary = "ffmpeg"
	}
	if cfg.OffsetPercent <= 0 || cfg.OffsetPercent >= 100 {
		cfg.OffsetPercent = 10
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 640, 360
	}
	if cfg.Quality <= 0 || cfg.Quality > 100 {
		cfg.Quality = 85
	}
	return &Thumbnailer{cfg: cfg}
}

// ExtractFromVideo grabs the frame at OffsetPercent of duration and writes it as a
// Width x Height JPEG to outputPath.
func (t *Thumbnailer) ExtractFromVideo(ctx context.Context, videoPath, outputPath string, duration float64) error {
	ctx, cancel := withTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	offset := 0.0
	if duration > 0 {
		offset = duration * t.cfg.OffsetPercent / 100
	}
	scratch := outputPath + ".frame.png"
	defer RemoveFile(scratch)

	cmd := newCommand(ctx, t.cfg.Binary,
		"-hide_banner", "-nostdin", "-y",
		"-ss", formatSeconds(offset),
		"-i", videoPath,
		"-frames:v", "1",
		"-f", "image2",
		"-c:v", "png",
		scratch,
	)
	stderr := newTailBuffer()
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return toolError(ctx, "ffmpeg thumbnail", KindIO, err, stderr.String())
	}

	frame, err := imaging.Open(scratch)
	if err != nil {
		return Fail(KindIO, err, "decode extracted frame")
	}
	poster := imaging.Resize(frame, t.cfg.Width, t.cfg.Height, imaging.Lanczos)

	out, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Fail(KindIO, err, "create thumbnail")
	}
	if err = imaging.Encode(out, poster, imaging.JPEG, imaging.JPEGQuality(t.cfg.Quality)); err != nil {
		out.Close()
		_ = RemoveFile(outputPath)
		return Fail(KindIO, err, "encode thumbnail")
	}
	if err = out.Sync(); err != nil {
		out.Close()
		_ = RemoveFile(outputPath)
		return Fail(KindIO, err, "sync thumbnail")
	}
	if err = out.Close(); err != nil {
		_ = RemoveFile(outputPath)
		return Fail(KindIO, err, "close thumbnail")
	}
	return nil
}

// AdoptUserImage moves a staged poster into outputPath byte for byte.
func (t *Thumbnailer) AdoptUserImage(ctx context.Context, stagedPath, outputPath string) error {
	if err := ctx.Err(); err != nil {
		return Fail(KindCanceled, err, "adopt poster")
	}
	if err := moveFile(stagedPath, outputPath); err != nil {
		return Fail(KindIO, err, "adopt poster")
	}
	return nil
}
