package dialogue

import (
	"context"
	"time"
)

// Step is one beat in a scripted sequence: wait Delay, then run Do.
// Pauses between beats are expressed as the Delay of the following step.
type Step struct {
	Delay time.Duration
	Do    func()
}

// Sequencer executes steps strictly in order on the calling goroutine.
// Waits are context-aware so a torn-down session stops its timers
// instead of running them out.
type Sequencer struct{}

func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// Run executes each step after its delay. It returns the context error
// if cancelled mid-sequence; completed steps are not rolled back.
func (s *Sequencer) Run(ctx context.Context, steps []Step) error {
	for _, step := range steps {
		if err := s.Wait(ctx, step.Delay); err != nil {
			return err
		}
		if step.Do != nil {
			step.Do()
		}
	}
	return nil
}

// Wait blocks for d, or returns early with the context error.
func (s *Sequencer) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Detach schedules fn after d without blocking the sequence. With a
// non-positive delay fn runs immediately on the calling goroutine,
// which keeps zero-delay test runs deterministic.
func (s *Sequencer) Detach(d time.Duration, fn func()) {
	if d <= 0 {
		fn()
		return
	}
	time.AfterFunc(d, fn)
}

// Timings holds every typing simulation and pause duration used by the
// orchestrator. Values are the designed cadence of the scene.
type Timings struct {
	IntroType  time.Duration
	IntroPause time.Duration

	DetectiveType  time.Duration
	DetectivePause time.Duration

	RevealHold    time.Duration
	WhisperType   time.Duration
	WhisperPause  time.Duration
	WhisperLinger time.Duration

	SuspectType time.Duration

	FarewellHold    time.Duration
	FarewellPause   time.Duration
	ConfessionDelay time.Duration
	ConfessionPause time.Duration
	BreakdownPause  time.Duration
	ClosingDelay    time.Duration
	ClosingPause    time.Duration
	EndingPause     time.Duration
}

// DefaultTimings is the cadence the scene was written for.
func DefaultTimings() Timings {
	return Timings{
		IntroType:  1200 * time.Millisecond,
		IntroPause: 600 * time.Millisecond,

		DetectiveType:  1000 * time.Millisecond,
		DetectivePause: 500 * time.Millisecond,

		RevealHold:    2000 * time.Millisecond,
		WhisperType:   1500 * time.Millisecond,
		WhisperPause:  800 * time.Millisecond,
		WhisperLinger: 3000 * time.Millisecond,

		SuspectType: 1200 * time.Millisecond,

		FarewellHold:    3000 * time.Millisecond,
		FarewellPause:   1000 * time.Millisecond,
		ConfessionDelay: 1500 * time.Millisecond,
		ConfessionPause: 2000 * time.Millisecond,
		BreakdownPause:  2500 * time.Millisecond,
		ClosingDelay:    1500 * time.Millisecond,
		ClosingPause:    2000 * time.Millisecond,
		EndingPause:     1000 * time.Millisecond,
	}
}

// InstantTimings runs every sequence with no delay. Used server-side,
// where pacing belongs to the client, and in tests.
func InstantTimings() Timings {
	return Timings{}
}
