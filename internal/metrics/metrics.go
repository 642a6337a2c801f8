package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const namespace = "hush"

// Dispatch cycle outcomes, used as the "outcome" label of CyclesTotal.
const (
	OutcomeInjected    = "injected"
	OutcomeNoAudio     = "no_audio"
	OutcomeEmptyText   = "empty_text"
	OutcomeDeviceError = "device_error"
	OutcomeWriteError  = "write_error"
	OutcomeModelError  = "model_error"
	OutcomeInjectError = "inject_error"
)

var (
	RecordingsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recordings_started_total",
		Help:      "Recordings started by the hotkey.",
	})

	CyclesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dispatch_cycles_total",
		Help:      "Completed dispatch cycles by outcome.",
	}, []string{"outcome"})

	RecordingSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "recording_duration_seconds",
		Help:      "Length of captured recordings.",
		Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
	})

	TranscriptionSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "transcription_duration_seconds",
		Help:      "Wall time spent in the speech model.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
	}, []string{"result"})

	WordsPerMinute = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_words_per_minute",
		Help:      "Speaking rate of the most recent transcription.",
	})
)

func init() {
	prometheus.MustRegister(
		RecordingsStarted,
		CyclesTotal,
		RecordingSeconds,
		TranscriptionSeconds,
		WordsPerMinute,
	)
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, log zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	log.Info().Str("addr", addr).Msg("metrics listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
