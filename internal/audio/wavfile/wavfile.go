// Package wavfile reads and writes the 16-bit PCM WAV files recordings are
// stored in.
package wavfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// SampleRate is fixed at 16 kHz, the input rate whisper expects.
const SampleRate = 16000

// Write writes 16-bit PCM samples to path, replacing any existing file.
func Write(path string, samples []int16, rate, channels int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".rec-*.wav")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	enc := wav.NewEncoder(tmp, rate, 16, channels, 1)
	data := make([]int, len(samples))
	for i, v := range samples {
		data[i] = int(v)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("wav write failed: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("wav close failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// ReadSamples decodes a 16-bit PCM WAV file into float32 samples in
// [-1, 1), returning them with the file's sample rate.
func ReadSamples(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, 0, fmt.Errorf("%s: not a valid wav file", path)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("wav decode failed: %w", err)
	}
	if d.BitDepth != 16 {
		return nil, 0, fmt.Errorf("%s: unsupported bit depth %d", path, d.BitDepth)
	}
	ch := int(d.NumChans)
	if ch < 1 {
		ch = 1
	}
	out := make([]float32, len(buf.Data)/ch)
	for i := range out {
		var sum int
		for c := 0; c < ch; c++ {
			sum += buf.Data[i*ch+c]
		}
		out[i] = float32(sum) / float32(ch) / 32768
	}
	return out, int(d.SampleRate), nil
}
