package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

const defaultConfigPath = "./config/config-local.yml"

type Config struct {
	Server   ServerConfig
	Postgres DBConfig
	Redis    RedisConfig
	S3       S3Config
	Logger   Logger
	Upload   UploadConfig
	Media    MediaConfig
	Worker   WorkerConfig
	Cache    CacheConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	AppVersion        string
	Port              string
	Mode              string
	JwtSecretKey      string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	CtxDefaultTimeout time.Duration
	AllowOrigins      []string
}

// Production reports whether error details must be withheld from clients.
func (s ServerConfig) Production() bool {
	return s.Mode == "Production"
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	PgDriver string
}

type RedisConfig struct {
	RedisAddr     string
	RedisPassword string
	DB            int
	MinIdleConns  int
	PoolSize      int
	PoolTimeout   int
	TLS           bool
}

type S3Config struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string
}

type Logger struct {
	Development       bool
	DisableCaller     bool
	DisableStacktrace bool
	Encoding          string
	Level             string
}

type UploadConfig struct {
	RootDir         string
	TempDir         string
	PublicPrefix    string
	MaxPayloadBytes int64
	BodyLimit       string
	SniffContent    bool
	StaleAfter      time.Duration
	SweepSchedule   string
}

type MediaConfig struct {
	FFmpegPath             string
	FFprobePath            string
	ProbeTimeout           time.Duration
	TranscodeTimeout       time.Duration
	ThumbnailTimeout       time.Duration
	ThumbnailOffsetPercent float64
	ThumbnailWidth         int
	ThumbnailHeight        int
	ThumbnailQuality       int
	Profile                ProfileConfig
}

// PipelineTimeout is the longest an upload can spend in ffprobe, ffmpeg and the thumbnail step.
func (m MediaConfig) PipelineTimeout() time.Duration {
	return m.ProbeTimeout + m.TranscodeTimeout + m.ThumbnailTimeout
}

type ProfileConfig struct {
	Container        string
	VideoCodec       string
	AudioCodec       string
	Width            int
	Height           int
	VideoBitrateKbps int
	AudioBitrateKbps int
}

type WorkerConfig struct {
	MaxConcurrentTranscodes int
	MaxCPUUsage             float64
	CPUCheckInterval        time.Duration
	CgroupPath              string
	CPUShares               uint64
}

type CacheConfig struct {
	VideoTTL time.Duration
	ListTTL  time.Duration
	UserTTL  time.Duration
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

// GetConfigPath returns the config file named by the "config" env var, or the local default.
func GetConfigPath() string {
	if path := os.Getenv("config"); path != "" {
		return path
	}
	return defaultConfigPath
}

func LoadConfig(filename string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(filename)
	v.AddConfigPath(".")
	v.AutomaticEnv()
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFound) {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// validate rejects a write timeout that would cut an upload response off mid pipeline.
// Zero leaves the write side unbounded.
func (c *Config) validate() error {
	if wt := c.Server.WriteTimeout; wt > 0 && wt < c.Media.PipelineTimeout() {
		return fmt.Errorf("server.writeTimeout %s is shorter than the media pipeline timeout %s", wt, c.Media.PipelineTimeout())
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "Development")
	v.SetDefault("server.port", ":5000")
	v.SetDefault("server.readTimeout", "15m")
	v.SetDefault("server.writeTimeout", "35m")
	v.SetDefault("server.ctxDefaultTimeout", "5s")

	v.SetDefault("upload.rootDir", "uploads")
	v.SetDefault("upload.tempDir", "uploads/temp")
	v.SetDefault("upload.publicPrefix", "/uploads")
	v.SetDefault("upload.maxPayloadBytes", 500<<20)
	v.SetDefault("upload.bodyLimit", "510M")
	v.SetDefault("upload.sniffContent", true)
	v.SetDefault("upload.staleAfter", "24h")
	v.SetDefault("upload.sweepSchedule", "0 */5 * * * *")

	v.SetDefault("media.ffmpegPath", "ffmpeg")
	v.SetDefault("media.ffprobePath", "ffprobe")
	v.SetDefault("media.probeTimeout", "30s")
	v.SetDefault("media.transcodeTimeout", "30m")
	v.SetDefault("media.thumbnailTimeout", "30s")
	v.SetDefault("media.thumbnailOffsetPercent", 10)
	v.SetDefault("media.thumbnailWidth", 640)
	v.SetDefault("media.thumbnailHeight", 360)
	v.SetDefault("media.thumbnailQuality", 85)
	v.SetDefault("media.profile.container", "mp4")
	v.SetDefault("media.profile.videoCodec", "libx264")
	v.SetDefault("media.profile.audioCodec", "aac")
	v.SetDefault("media.profile.width", 1280)
	v.SetDefault("media.profile.height", 720)
	v.SetDefault("media.profile.videoBitrateKbps", 2000)
	v.SetDefault("media.profile.audioBitrateKbps", 128)

	v.SetDefault("worker.cpuCheckInterval", "2s")

	v.SetDefault("cache.videoTTL", "10m")
	v.SetDefault("cache.listTTL", "5m")
	v.SetDefault("cache.userTTL", "1h")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
