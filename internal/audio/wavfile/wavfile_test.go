package wavfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := Write(path, []int16{0, 16384, -32768, 32767}, SampleRate, 1); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, rate, err := ReadSamples(path)
	if err != nil {
		t.Fatalf("ReadSamples: %v", err)
	}
	if rate != SampleRate {
		t.Errorf("rate = %d, want %d", rate, SampleRate)
	}
	want := []float32{0, 0.5, -1, 32767.0 / 32768}
	if len(got) != len(want) {
		t.Fatalf("got %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}

	bad := filepath.Join(t.TempDir(), "bad.wav")
	if err := os.WriteFile(bad, []byte("not a wav"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := ReadSamples(bad); err == nil {
		t.Error("expected error for invalid file")
	}
}
