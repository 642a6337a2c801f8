package record

import (
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// PortAudio opens the default input device through PortAudio.
type PortAudio struct {
	FramesPerBuffer int
}

// Open initializes PortAudio and opens a callback stream on the default input.
// PortAudio is terminated again when the stream is closed.
func (p PortAudio) Open(sampleRate, channels int, onFrame func(in []int16)) (Stream, error) {
	frames := p.FramesPerBuffer
	if frames <= 0 {
		frames = portaudio.FramesPerBufferUnspecified
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init failed: %w", err)
	}
	st, err := portaudio.OpenDefaultStream(channels, 0, float64(sampleRate), frames, func(in []int16) {
		onFrame(in)
	})
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("open stream failed: %w", err)
	}
	return &paStream{st: st}, nil
}

type paStream struct {
	st *portaudio.Stream
}

func (s *paStream) Start() error { return s.st.Start() }

// Stop maps to Pa_StopStream, which returns only after pending callbacks finish.
func (s *paStream) Stop() error { return s.st.Stop() }

func (s *paStream) Close() error {
	return errors.Join(s.st.Close(), portaudio.Terminate())
}
