package media

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/amankumarsingh77/vidhost/internal/models"
)

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
		Size     string `json:"size"`
		BitRate  string `json:"bit_rate"`
	} `json:"format"`
}

// Prober reads container metadata with ffprobe. It never touches the input file.
type Prober struct {
	bin     string
	timeout time.Duration
}

func NewProber(bin string, timeout time.Duration) *Prober {
	if bin == "" {
		bin = "ffprobe"
	}
	return &Prober{bin: bin, timeout: timeout}
}

func (p *Prober) Probe(ctx context.Context, path string) (*models.ProbeResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, Fail(KindIO, err, "stat %s", path)
	}

	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	cmd := newCommand(ctx, p.bin,
		"-v", "error",
		"-show_entries", "format=duration,size,bit_rate",
		"-of", "json",
		path,
	)
	stderr := newTailBuffer()
	cmd.Stderr = stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, toolError(ctx, "ffprobe", KindUnreadableMedia, err, stderr.String())
	}

	var probe ffprobeOutput
	if err = json.Unmarshal(out, &probe); err != nil {
		return nil, Fail(KindUnreadableMedia, err, "parse ffprobe output")
	}

	duration, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil || math.IsNaN(duration) || math.IsInf(duration, 0) || duration < 0 {
		return nil, Fail(KindUnreadableMedia, err, "container reports no duration")
	}

	size, err := strconv.ParseInt(probe.Format.Size, 10, 64)
	if err != nil || size <= 0 {
		size = info.Size()
	}
	bitrate, _ := strconv.ParseInt(probe.Format.BitRate, 10, 64)

	return &models.ProbeResult{
		Duration: int64(math.Round(duration)),
		Size:     size,
		Bitrate:  bitrate,
	}, nil
}
