package models

import (
	"fmt"
)

type ProbeResult struct {
	Duration int64 `json:"duration"`
	Size     int64 `json:"size"`
	Bitrate  int64 `json:"bit_rate"`
}

type JobState int32

const (
	JobPending JobState = iota
	JobRunning
	JobSucceeded
	JobFailed
)

func (s JobState) String() string {
	switch s {
	case JobPending:
		return "pending"
	case JobRunning:
		return "running"
	case JobSucceeded:
		return "succeeded"
	case JobFailed:
		return "failed"
	default:
		return fmt.Sprintf("JobState(%d)", int32(s))
	}
}

// EncodingProfile is the fixed output target of the transcoder.
type EncodingProfile struct {
	Container        string `json:"container"`
	VideoCodec       string `json:"video_codec"`
	AudioCodec       string `json:"audio_codec"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	VideoBitrateKbps int    `json:"video_bitrate_kbps"`
	AudioBitrateKbps int    `json:"audio_bitrate_kbps"`
}

func DefaultProfile() EncodingProfile {
	return EncodingProfile{
		Container:        "mp4",
		VideoCodec:       "libx264",
		AudioCodec:       "aac",
		Width:            1280,
		Height:           720,
		VideoBitrateKbps: 2000,
		AudioBitrateKbps: 128,
	}
}

func (p EncodingProfile) Resolution() string {
	return fmt.Sprintf("%dp", p.Height)
}
