package record

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/shivajreddy/hush/internal/audio/wavfile"
)

// SampleRate is the capture rate.
const SampleRate = wavfile.SampleRate

const channels = 1

var (
	// ErrAlreadyActive is returned by Start when a recording is in progress.
	ErrAlreadyActive = errors.New("recording already active")
	// ErrNotActive is returned by Stop when nothing is being recorded.
	ErrNotActive = errors.New("recording not active")
)

// DeviceError reports an audio stream failure.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string { return fmt.Sprintf("audio device %s: %v", e.Op, e.Err) }
func (e *DeviceError) Unwrap() error { return e.Err }

// Stream is an open capture stream.
type Stream interface {
	Start() error
	// Stop must not return while a frame callback is still running.
	Stop() error
	Close() error
}

// Device opens capture streams that deliver frames through onFrame.
// onFrame may be called on a driver thread and must not retain in.
type Device interface {
	Open(sampleRate, channels int, onFrame func(in []int16)) (Stream, error)
}

// Result is returned when a recording stops.
type Result struct {
	HasAudio bool
	Duration time.Duration
	Samples  int
	Path     string // WAV path, empty when HasAudio is false
}

// Session owns one capture stream and its sample buffer.
type Session struct {
	dev  Device
	path string
	log  zerolog.Logger
	now  func() time.Time

	// mu is the gate between the frame callback and Start/Stop.
	mu        sync.Mutex
	active    bool
	startedAt time.Time
	chunks    [][]int16
	stream    Stream
}

// NewSession creates an idle session that writes finished recordings to wavPath.
func NewSession(dev Device, wavPath string, log zerolog.Logger) *Session {
	return &Session{dev: dev, path: wavPath, log: log, now: time.Now}
}

// Active reports whether a recording is in progress.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Start opens the input stream and begins buffering frames.
func (s *Session) Start() error {
	if s.Active() {
		return ErrAlreadyActive
	}

	stream, err := s.dev.Open(SampleRate, channels, s.onFrame)
	if err != nil {
		return &DeviceError{Op: "open", Err: err}
	}

	s.mu.Lock()
	s.chunks = nil
	s.stream = stream
	s.startedAt = s.now()
	s.active = true
	s.mu.Unlock()

	if err := stream.Start(); err != nil {
		s.mu.Lock()
		s.active = false
		s.stream = nil
		s.chunks = nil
		s.mu.Unlock()
		return &DeviceError{Op: "start", Err: errors.Join(err, stream.Close())}
	}

	s.log.Info().Msg("Recording started...")
	return nil
}

// Stop closes the stream and, if any frames arrived, writes them to the WAV path.
// The session is idle when Stop returns, whatever the outcome.
func (s *Session) Stop() (Result, error) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return Result{}, ErrNotActive
	}
	s.active = false
	chunks := s.chunks
	stream := s.stream
	started := s.startedAt
	s.chunks = nil
	s.stream = nil
	s.mu.Unlock()

	// The gate is closed: a callback still in flight sees active == false.
	// Stop waits for it to return before the buffer is touched.
	if err := errors.Join(stream.Stop(), stream.Close()); err != nil {
		return Result{Duration: s.now().Sub(started)}, &DeviceError{Op: "close", Err: err}
	}

	res := Result{Duration: s.now().Sub(started)}
	if len(chunks) == 0 {
		s.log.Info().Msg("No audio recorded.")
		return res, nil
	}

	samples := slices.Concat(chunks...)
	if err := wavfile.Write(s.path, samples, SampleRate, channels); err != nil {
		return res, fmt.Errorf("write recording: %w", err)
	}
	res.HasAudio = true
	res.Samples = len(samples)
	res.Path = s.path

	s.log.Info().Str("duration", fmt.Sprintf("%.2fs", res.Duration.Seconds())).Msg("Recording stopped.")
	return res, nil
}

func (s *Session) onFrame(in []int16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.chunks = append(s.chunks, slices.Clone(in))
}
