package media

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/amankumarsingh77/vidhost/internal/models"
	"github.com/amankumarsingh77/vidhost/pkg/logger"
	"github.com/amankumarsingh77/vidhost/pkg/utils"
)

// TranscodeSpec binds one input to one output under a profile.
// Duration, in seconds, only drives progress reporting.
type TranscodeSpec struct {
	Input    string
	Output   string
	Profile  models.EncodingProfile
	Duration float64
}

type TranscoderConfig struct {
	Binary  string
	Timeout time.Duration
	// StartHook runs with the encoder pid right after it starts.
	StartHook func(pid int) error
}

type Transcoder struct {
	cfg    TranscoderConfig
	logger logger.Logger
}

func NewTranscoder(cfg TranscoderConfig, log logger.Logger) *Transcoder {
	if cfg.Binary == "" {
		cfg.Binary = "ffmpeg"
	}
	return &Transcoder{cfg: cfg, logger: log}
}

// Transcode starts the encoder and returns the running job. Errors returned here
// mean nothing was started.
func (t *Transcoder) Transcode(ctx context.Context, spec TranscodeSpec) (*Job, error) {
	if _, err := os.Stat(spec.Input); err != nil {
		return nil, Fail(KindIO, err, "stat input")
	}
	if _, err := os.Stat(filepath.Dir(spec.Output)); err != nil {
		return nil, Fail(KindIO, err, "output dir")
	}
	args := buildTranscodeArgs(spec.Input, spec.Output, normalizeProfile(spec.Profile))
	return NewJob(func(report Reporter) error {
		return t.run(ctx, spec, args, report)
	}), nil
}

func (t *Transcoder) run(parent context.Context, spec TranscodeSpec, args []string, report Reporter) error {
	ctx, cancel := withTimeout(parent, t.cfg.Timeout)
	defer cancel()

	cmd := newCommand(ctx, t.cfg.Binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Fail(KindIO, err, "ffmpeg stdout")
	}
	stderr := newTailBuffer()
	cmd.Stderr = stderr

	if err = cmd.Start(); err != nil {
		return Fail(KindIO, err, "start ffmpeg")
	}
	if t.cfg.StartHook != nil {
		if err = t.cfg.StartHook(cmd.Process.Pid); err != nil {
			t.logger.Warnf("Transcode - StartHook error: %v", err)
		}
	}

	total := time.Duration(spec.Duration * float64(time.Second))
	readProgress(stdout, total, report)

	if err = cmd.Wait(); err != nil {
		if rmErr := RemoveFile(spec.Output); rmErr != nil {
			t.logger.Warnf("Transcode - remove partial output %s: %v", spec.Output, rmErr)
		}
		return toolError(ctx, "ffmpeg", KindIO, err, stderr.String())
	}

	info, err := os.Stat(spec.Output)
	if err != nil || info.Size() == 0 {
		_ = RemoveFile(spec.Output)
		return Fail(KindIO, err, "ffmpeg produced no output")
	}
	return nil
}

// readProgress consumes ffmpeg's -progress key=value stream until EOF.
func readProgress(r io.Reader, total time.Duration, report Reporter) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(sc.Text()), "=")
		if !ok {
			continue
		}
		switch key {
		// out_time_ms is microseconds too, despite the name.
		case "out_time_us", "out_time_ms":
			if total <= 0 {
				continue
			}
			us, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				continue
			}
			report(int(us * 100 / total.Microseconds()))
		case "progress":
			if value == "end" {
				report(100)
			}
		}
	}
	// drain so the encoder never blocks on a full pipe
	_, _ = io.Copy(io.Discard, r)
}

func normalizeProfile(p models.EncodingProfile) models.EncodingProfile {
	def := models.DefaultProfile()
	if p.Container == "" {
		p.Container = def.Container
	}
	if p.VideoCodec == "" {
		p.VideoCodec = def.VideoCodec
	}
	if p.AudioCodec == "" {
		p.AudioCodec = def.AudioCodec
	}
	if p.Width <= 0 || p.Height <= 0 {
		p.Width, p.Height = def.Width, def.Height
	}
	if p.AudioBitrateKbps <= 0 {
		p.AudioBitrateKbps = def.AudioBitrateKbps
	}
	if p.VideoBitrateKbps <= 0 {
		p.VideoBitrateKbps = def.VideoBitrateKbps
	}
	p.VideoBitrateKbps = utils.ClampBitrate(p.VideoBitrateKbps, p.Height)
	return p
}

func buildTranscodeArgs(input, output string, p models.EncodingProfile) []string {
	return []string{
		"-hide_banner", "-nostdin", "-y",
		"-i", input,
		"-c:v", p.VideoCodec,
		"-b:v", fmt.Sprintf("%dk", p.VideoBitrateKbps),
		"-maxrate", fmt.Sprintf("%dk", p.VideoBitrateKbps),
		"-bufsize", fmt.Sprintf("%dk", p.VideoBitrateKbps*2),
		"-vf", fmt.Sprintf("scale=%d:%d", p.Width, p.Height),
		"-c:a", p.AudioCodec,
		"-b:a", fmt.Sprintf("%dk", p.AudioBitrateKbps),
		"-movflags", "+faststart",
		"-f", p.Container,
		"-progress", "pipe:1",
		"-nostats",
		output,
	}
}
