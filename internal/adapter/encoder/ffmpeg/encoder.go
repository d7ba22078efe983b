package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/bnema/vidforge/internal/domain"
	"github.com/bnema/vidforge/internal/infrastructure/logger"
	"github.com/bnema/vidforge/internal/port"
)

// Encoder invokes ffmpeg/ffprobe as external processes. One Encode call
// drives exactly one job to completion or failure; there is no retry here.
type Encoder struct {
	ffmpegPath  string
	ffprobePath string
}

func NewEncoder() *Encoder {
	return &Encoder{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
	}
}

// codecArgs maps each container format to its video/audio codec pair.
// Higher resolutions (1440p, 4k) get the slow preset tier.
func codecArgs(format domain.Format, resolution domain.Resolution) []string {
	slowTier := resolution == domain.Resolution1440p || resolution == domain.Resolution4K

	switch format {
	case domain.FormatWebM:
		args := []string{
			"-c:v", "libvpx-vp9",
			"-b:v", "0",
			"-c:a", "libopus",
			"-b:a", "128k",
			"-f", "webm",
		}
		if slowTier {
			return append(args, "-crf", "28", "-deadline", "good", "-cpu-used", "1", "-row-mt", "1")
		}
		return append(args, "-crf", "31", "-deadline", "good", "-cpu-used", "2", "-row-mt", "1")
	case domain.FormatAVI:
		args := []string{
			"-c:v", "libx264",
			"-c:a", "libmp3lame",
			"-b:a", "192k",
			"-f", "avi",
		}
		if slowTier {
			return append(args, "-crf", "21", "-preset", "slow")
		}
		return append(args, "-crf", "23", "-preset", "medium")
	default: // mp4
		args := []string{
			"-c:v", "libx264",
			"-c:a", "aac",
			"-b:a", "128k",
			"-movflags", "+faststart",
			"-f", "mp4",
		}
		if slowTier {
			return append(args, "-crf", "21", "-preset", "slow")
		}
		return append(args, "-crf", "23", "-preset", "medium")
	}
}

// buildEncodeArgs assembles the full ffmpeg argument list for a request.
// Progress is requested on stdout as machine-readable key=value lines.
func buildEncodeArgs(req port.EncodeRequest) []string {
	args := []string{
		"-hide_banner",
		"-nostats",
		"-i", req.InputPath,
	}
	args = append(args, codecArgs(req.Format, req.Resolution)...)
	if size, ok := req.Resolution.Size(); ok {
		args = append(args, "-s", size)
	}
	args = append(args,
		"-progress", "pipe:1",
		"-y", req.OutputPath,
	)
	return args
}

func (e *Encoder) Encode(ctx context.Context, req port.EncodeRequest, onProgress func(percent int)) error {
	// Total duration is needed to turn ffmpeg's out_time reports into a
	// percentage. An unknown duration disables progress, not the encode.
	total, err := e.Duration(ctx, req.InputPath)
	if err != nil {
		logger.Warn.Printf("probe duration failed for %s: %v", logger.SanitizeForLog(req.InputPath), err)
		total = 0
	}

	cmd := exec.CommandContext(ctx, e.ffmpegPath, buildEncodeArgs(req)...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	watchProgress(stdout, total, onProgress)

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, logger.SanitizeForLog(lastLine(stderr.String())))
	}
	return nil
}

// Thumbnail extracts a single 320x240 frame at the given offset.
func (e *Encoder) Thumbnail(ctx context.Context, inputPath, outputPath string, seekTo time.Duration) error {
	args := []string{
		"-hide_banner",
		"-ss", formatSeek(seekTo),
		"-i", inputPath,
		"-vframes", "1",
		"-s", "320x240",
		"-f", "image2",
		"-y", outputPath,
	}
	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg thumbnail: %w: %s", err, logger.SanitizeForLog(lastLine(stderr.String())))
	}
	return nil
}

// Duration reads the container duration via ffprobe.
func (e *Encoder) Duration(ctx context.Context, inputPath string) (time.Duration, error) {
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		inputPath,
	}
	out, err := exec.CommandContext(ctx, e.ffprobePath, args...).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}
	return parseProbeDuration(out)
}

func parseProbeDuration(out []byte) (time.Duration, error) {
	var probe struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(out, &probe); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	secs, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", probe.Format.Duration, err)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

func formatSeek(d time.Duration) string {
	if d <= 0 {
		d = time.Second
	}
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

var _ port.Encoder = (*Encoder)(nil)
