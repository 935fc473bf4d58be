// Package transcode converts uploaded recordings to the PCM WAV format
// stored in Drive, using an external ffmpeg binary.
package transcode

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/transpoze/drivegate/internal/logger"
	"github.com/transpoze/drivegate/internal/telemetry"
	gwerrors "github.com/transpoze/drivegate/pkg/errors"
)

// Transcoder converts an audio file into PCM WAV.
type Transcoder interface {
	// ToPCM reads in and writes the converted audio to out.
	ToPCM(ctx context.Context, in, out string) error

	// Format describes the output for API responses.
	Format() string
}

// Config configures the ffmpeg transcoder.
type Config struct {
	// Binary is the ffmpeg executable, resolved through PATH when not absolute.
	Binary string `mapstructure:"binary" validate:"required" yaml:"binary"`

	// Codec is the ffmpeg audio codec, e.g. pcm_s16le.
	Codec string `mapstructure:"codec" validate:"required" yaml:"codec"`

	// Channels is the output channel count.
	Channels int `mapstructure:"channels" validate:"min=1,max=8" yaml:"channels"`

	// SampleRate is the output sample rate in Hz.
	SampleRate int `mapstructure:"sample_rate" validate:"min=8000,max=192000" yaml:"sample_rate"`

	// Timeout bounds a single conversion. Zero takes the default; a negative
	// value leaves only the caller's deadline. The HTTP request timeout also
	// applies, so the shorter of the two wins.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// DefaultTimeout stays below the API's default request timeout, so a stuck
// ffmpeg surfaces as ConversionFailed rather than a bare 503.
const DefaultTimeout = 90 * time.Second

// ApplyDefaults fills zero values with 16-bit, 16kHz mono PCM.
func (c *Config) ApplyDefaults() {
	if c.Binary == "" {
		c.Binary = "ffmpeg"
	}
	if c.Codec == "" {
		c.Codec = "pcm_s16le"
	}
	if c.Channels == 0 {
		c.Channels = 1
	}
	if c.SampleRate == 0 {
		c.SampleRate = 16000
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
}

// Metrics records conversion outcomes. A nil Metrics disables collection.
type Metrics interface {
	ObserveTranscode(duration time.Duration, err error)
}

// FFmpeg runs ffmpeg as a subprocess.
type FFmpeg struct {
	cfg     Config
	metrics Metrics
}

var _ Transcoder = (*FFmpeg)(nil)

// NewFFmpeg creates an ffmpeg transcoder.
func NewFFmpeg(cfg Config, metrics Metrics) *FFmpeg {
	cfg.ApplyDefaults()
	return &FFmpeg{cfg: cfg, metrics: metrics}
}

// args builds the ffmpeg argv. Paths are passed as separate arguments, never
// through a shell.
func (f *FFmpeg) args(in, out string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", in,
		"-acodec", f.cfg.Codec,
		"-ac", strconv.Itoa(f.cfg.Channels),
		"-ar", strconv.Itoa(f.cfg.SampleRate),
		out,
	}
}

// ToPCM implements Transcoder.
func (f *FFmpeg) ToPCM(ctx context.Context, in, out string) error {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanTranscode,
		trace.WithAttributes(telemetry.MediaFormat(f.Format())))
	defer span.End()
	start := time.Now()

	if f.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.Timeout)
		defer cancel()
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.cfg.Binary, f.args(in, out)...)
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		err = gwerrors.NewConversionFailedError("transcode.pcm", "ffmpeg failed: "+tail(stderr.String(), 3), err)
		telemetry.RecordError(ctx, err)
	}
	if f.metrics != nil {
		f.metrics.ObserveTranscode(time.Since(start), err)
	}
	if err != nil {
		return err
	}

	logger.DebugCtx(ctx, "Audio converted",
		logger.KeyPath, out,
		logger.KeyDurationMs, logger.Duration(start))
	return nil
}

// Format implements Transcoder.
func (f *FFmpeg) Format() string {
	return Describe(f.cfg)
}

// Describe renders cfg the way API responses report it,
// e.g. "PCM 16-bit, 16kHz, mono".
func Describe(cfg Config) string {
	depth := "16-bit"
	switch cfg.Codec {
	case "pcm_s24le":
		depth = "24-bit"
	case "pcm_s32le", "pcm_f32le":
		depth = "32-bit"
	case "pcm_u8":
		depth = "8-bit"
	}

	rate := fmt.Sprintf("%gkHz", float64(cfg.SampleRate)/1000)

	channels := "mono"
	switch cfg.Channels {
	case 1:
	case 2:
		channels = "stereo"
	default:
		channels = fmt.Sprintf("%d channels", cfg.Channels)
	}
	return fmt.Sprintf("PCM %s, %s, %s", depth, rate, channels)
}

// tail returns the last n non-empty lines of s.
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	var kept []string
	for i := len(lines) - 1; i >= 0 && len(kept) < n; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			kept = append([]string{l}, kept...)
		}
	}
	if len(kept) == 0 {
		return "no output"
	}
	return strings.Join(kept, " | ")
}
