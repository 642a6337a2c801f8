package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shivajreddy/hush/internal/asr"
	"github.com/shivajreddy/hush/internal/hotkey"
	"github.com/shivajreddy/hush/internal/metrics"
	"github.com/shivajreddy/hush/internal/notify"
	"github.com/shivajreddy/hush/internal/record"
)

// Recorder is the recording session driven by the hotkey.
type Recorder interface {
	Start() error
	Stop() (record.Result, error)
	Active() bool
}

// Transcriber turns a finished recording into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string, duration time.Duration) (asr.Result, error)
}

// Injector delivers text to the focused application.
type Injector interface {
	Inject(ctx context.Context, text string) error
}

// Controller toggles recording when the hotkey is pressed and, when a
// recording ends, transcribes it and injects the text. The recorder's
// Active flag is the only toggle state.
type Controller struct {
	spec     hotkey.Spec
	mods     hotkey.ModifierTracker
	rec      Recorder
	asr      Transcriber
	inj      Injector
	notifier notify.Notifier
	log      zerolog.Logger

	cycle zerolog.Logger
}

// NewController wires the dispatch pipeline. notifier may be nil.
func NewController(spec hotkey.Spec, rec Recorder, tr Transcriber, inj Injector, notifier notify.Notifier, log zerolog.Logger) *Controller {
	if notifier == nil {
		notifier = notify.Desktop{}
	}
	return &Controller{
		spec:     spec,
		rec:      rec,
		asr:      tr,
		inj:      inj,
		notifier: notifier,
		log:      log,
		cycle:    log,
	}
}

// HandleKey processes one key event. Modifier state is always updated
// first; only a press of the trigger with every modifier held toggles.
func (c *Controller) HandleKey(ctx context.Context, ev hotkey.Event) {
	c.mods.Observe(ev.Key, ev.Pressed)
	if !ev.Pressed || ev.Key != c.spec.Trigger {
		return
	}
	if !c.mods.Satisfies(c.spec.Modifiers) {
		return
	}
	if c.rec.Active() {
		c.finish(ctx)
	} else {
		c.begin()
	}
}

func (c *Controller) begin() {
	c.cycle = c.log.With().Str("cycle", uuid.NewString()[:8]).Logger()
	if err := c.rec.Start(); err != nil {
		c.cycle.Error().Err(err).Msg("recording start failed")
		c.notifier.Notify("Recording failed")
		if errors.As(err, new(*record.DeviceError)) {
			metrics.CyclesTotal.WithLabelValues(metrics.OutcomeDeviceError).Inc()
		}
		return
	}
	metrics.RecordingsStarted.Inc()
	c.notifier.Notify("Recording started")
}

func (c *Controller) finish(ctx context.Context) {
	log := c.cycle
	res, err := c.rec.Stop()
	if err != nil {
		log.Error().Err(err).Msg("recording stop failed")
		c.notifier.Notify("Recording failed")
		outcome := metrics.OutcomeWriteError
		if errors.As(err, new(*record.DeviceError)) {
			outcome = metrics.OutcomeDeviceError
		}
		metrics.CyclesTotal.WithLabelValues(outcome).Inc()
		return
	}
	metrics.RecordingSeconds.Observe(res.Duration.Seconds())
	if !res.HasAudio {
		metrics.CyclesTotal.WithLabelValues(metrics.OutcomeNoAudio).Inc()
		return
	}
	c.notifier.Notify("Recording finished")

	log.Info().Msg("Transcribing...")
	start := time.Now()
	tr, err := c.asr.Transcribe(ctx, res.Path, res.Duration)
	if err != nil {
		metrics.TranscriptionSeconds.WithLabelValues("error").Observe(time.Since(start).Seconds())
		log.Error().Err(err).Msg("transcription failed")
		c.notifier.Notify("Transcription failed")
		metrics.CyclesTotal.WithLabelValues(metrics.OutcomeModelError).Inc()
		return
	}
	metrics.TranscriptionSeconds.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	metrics.WordsPerMinute.Set(tr.WordsPerMinute)

	log.Info().Str("wpm", fmt.Sprintf("%.0f", tr.WordsPerMinute)).Int("chars", len(tr.Text)).Msg("Transcribed")

	if strings.TrimSpace(tr.Text) == "" {
		log.Warn().Msg("empty transcription, nothing to paste")
		c.notifier.Notify("Empty result")
		metrics.CyclesTotal.WithLabelValues(metrics.OutcomeEmptyText).Inc()
		return
	}
	if err := c.inj.Inject(ctx, tr.Text); err != nil {
		log.Error().Err(err).Msg("paste failed")
		c.notifier.Notify("Paste failed")
		metrics.CyclesTotal.WithLabelValues(metrics.OutcomeInjectError).Inc()
		return
	}
	log.Info().Msg("Pasted into focused window")
	metrics.CyclesTotal.WithLabelValues(metrics.OutcomeInjected).Inc()
}
