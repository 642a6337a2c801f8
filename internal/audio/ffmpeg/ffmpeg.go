// Package ffmpeg transcodes recordings before they are uploaded to an ASR
// server that wants something other than 16-bit WAV.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Options describe the target encoding.
type Options struct {
	Codec      string
	SampleRate int
	Channels   int
	BitRate    int // kbit/s, only for lossy codecs
}

// Needed reports whether a recording has to be transcoded for the given
// codec and container.
func Needed(codec, container string) bool {
	c := strings.ToLower(codec)
	return !(c == "" || c == "pcm" || c == "pcm_s16le") || Ext(container) != "wav"
}

// Args builds the ffmpeg command line.
func Args(opts Options, inPath, outPath string) ([]string, error) {
	codec, hasBitrate := codecFor(opts.Codec)
	if codec == "" {
		return nil, fmt.Errorf("unsupported codec: %s", opts.Codec)
	}
	channels := opts.Channels
	if channels <= 0 {
		channels = 1
	}
	args := []string{"-y", "-i", inPath, "-ac", strconv.Itoa(channels)}
	if opts.SampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(opts.SampleRate))
	}
	args = append(args, "-c:a", codec)
	if hasBitrate {
		br := opts.BitRate
		if br <= 0 {
			br = 128
		}
		args = append(args, "-b:a", fmt.Sprintf("%dk", br))
	}
	return append(args, outPath), nil
}

// Convert runs ffmpeg to transcode inPath into outPath.
func Convert(ctx context.Context, opts Options, inPath, outPath string) error {
	args, err := Args(opts, inPath, outPath)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w\n%s", err, stderr.String())
	}
	return nil
}

// Ext maps a container name to its file extension.
func Ext(container string) string {
	switch c := strings.ToLower(container); c {
	case "", "wav":
		return "wav"
	case "ogg", "opus":
		return "ogg"
	case "mp4", "m4a", "aac":
		return "m4a"
	default:
		return c
	}
}

func codecFor(key string) (string, bool) {
	k := strings.ToLower(key)
	switch k {
	case "opus", "libopus":
		return "libopus", true
	case "aac":
		return "aac", true
	case "mp3":
		return "libmp3lame", true
	case "vorbis", "libvorbis":
		return "libvorbis", true
	case "flac":
		return "flac", false
	case "", "pcm":
		return "pcm_s16le", false
	case "pcm_s16le", "pcm_s24le", "pcm_s32le", "pcm_f32le":
		return k, false
	}
	return "", false
}
