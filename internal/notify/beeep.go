package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/gen2brain/beeep"
)

// Tone is one step of the audible cue.
type Tone struct {
	Freq     float64
	Duration time.Duration
}

// Cue is the two-tone notification chime.
var Cue = []Tone{
	{Freq: 800, Duration: 100 * time.Millisecond},
	{Freq: 600, Duration: 200 * time.Millisecond},
}

// BeepSound plays the cue through the system beeper.
type BeepSound struct {
	Tones []Tone
	beep  func(freq float64, durationMs int) error
}

// NewBeepSound returns a sound sink playing Cue.
func NewBeepSound() *BeepSound {
	return &BeepSound{Tones: Cue, beep: func(freq float64, ms int) error {
		return beeep.Beep(freq, ms)
	}}
}

// Play plays every tone in order and returns the first error.
func (s *BeepSound) Play() error {
	for _, t := range s.Tones {
		if err := s.beep(t.Freq, int(t.Duration/time.Millisecond)); err != nil {
			return fmt.Errorf("beep %.0fHz: %w", t.Freq, err)
		}
	}
	return nil
}

// BeepDesktop shows desktop notifications through beeep. It serves
// platforms without a session bus; beeep has no expiry or click support,
// so Alert.Expire is left to the platform. ctx bounds how long Show waits
// for the platform call.
type BeepDesktop struct {
	notify func(title, message string) error
}

// NewBeepDesktop returns the production desktop sink.
func NewBeepDesktop() *BeepDesktop {
	return &BeepDesktop{notify: func(title, message string) error {
		return beeep.Notify(title, message, "")
	}}
}

func (d *BeepDesktop) Show(ctx context.Context, a Alert) error {
	done := make(chan error, 1)
	go func() { done <- d.notify(a.Title, a.Body) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("desktop notification: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("desktop notification: %w", ctx.Err())
	}
}
