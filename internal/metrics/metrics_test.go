package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

func TestCyclesTotalByOutcome(t *testing.T) {
	before := testutil.ToFloat64(CyclesTotal.WithLabelValues(OutcomeNoAudio))
	CyclesTotal.WithLabelValues(OutcomeNoAudio).Inc()
	if got := testutil.ToFloat64(CyclesTotal.WithLabelValues(OutcomeNoAudio)); got != before+1 {
		t.Errorf("no_audio cycles = %v, want %v", got, before+1)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", zerolog.Nop()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
