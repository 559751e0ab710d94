package dialogue

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/noirlabs/interrogation-engine/pkg/game"
)

// ErrSequenceInProgress is returned when a player utterance arrives
// while a previous turn, the intro, or the finale is still sequencing.
// Concurrent submissions are rejected, not queued.
var ErrSequenceInProgress = errors.New("dialogue sequence already in progress")

// TurnProvider produces a structured turn for one player utterance.
// Implementations: the LLM gateway, the offline fallback generator, and
// the console's api client.
type TurnProvider interface {
	NextTurn(ctx context.Context, playerMessage string, st *game.State, history []game.Message) (*game.Turn, error)
}

// FallbackProvider adapts the keyword generator to the TurnProvider
// interface. It never returns an error.
type FallbackProvider struct {
	gen *game.FallbackGenerator
}

func NewFallbackProvider() *FallbackProvider {
	return &FallbackProvider{gen: game.NewFallbackGenerator()}
}

func (p *FallbackProvider) NextTurn(_ context.Context, playerMessage string, st *game.State, _ []game.Message) (*game.Turn, error) {
	return p.gen.GenerateTurn(playerMessage, st), nil
}

// EventType tags orchestrator events consumed by the presentation layer.
type EventType string

const (
	EventMessage EventType = "message"       // a transcript line was appended
	EventSpeaker EventType = "speaker"       // active speaker/mood changed (empty speaker = cleared)
	EventTyping  EventType = "typing"        // typing indicator on/off
	EventWhisper EventType = "whisper"       // transient AI whisper text set/cleared
	EventReveal  EventType = "reveal"        // dramatic AI reveal flag on/off
	EventState   EventType = "state"         // session state mutated
	EventDone    EventType = "sequence_done" // a full sequence finished
)

// Event is a single presentation-facing notification. Fields beyond
// Type are populated per event kind.
type Event struct {
	Type    EventType
	Message *game.Message
	Speaker game.Speaker
	Mood    string
	Typing  bool
	Whisper string
	Reveal  bool
}

// Listener receives events synchronously, in sequence order, from the
// goroutine driving the sequence. It must not call back into the
// orchestrator's sequencing methods.
type Listener func(Event)

// Orchestrator turns player utterances into fully sequenced
// multi-speaker exchanges, and owns the scripted intro and finale. It
// holds the session state for its lifetime; all mutations go through
// the state's own setters, in sequence order.
type Orchestrator struct {
	provider TurnProvider
	seq      *Sequencer
	timings  Timings
	listener Listener
	logger   *slog.Logger

	mu            sync.Mutex
	st            *game.State
	busy          bool
	activeSpeaker game.Speaker
	activeMood    string
	typing        bool
	whisper       string
	showReveal    bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTimings overrides the default sequence cadence.
func WithTimings(t Timings) Option {
	return func(o *Orchestrator) { o.timings = t }
}

// WithListener registers the presentation callback.
func WithListener(l Listener) Option {
	return func(o *Orchestrator) { o.listener = l }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an orchestrator over an existing session state.
func New(st *game.State, provider TurnProvider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider: provider,
		seq:      NewSequencer(),
		timings:  DefaultTimings(),
		logger:   slog.Default(),
		st:       st,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) emit(e Event) {
	if o.listener != nil {
		o.listener(e)
	}
}

// begin claims the single sequencing slot.
func (o *Orchestrator) begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.busy {
		return ErrSequenceInProgress
	}
	o.busy = true
	return nil
}

// end releases the slot and clears the transient speaker, mood, and
// typing flags, regardless of how the sequence went.
func (o *Orchestrator) end() {
	o.mu.Lock()
	o.busy = false
	o.typing = false
	o.activeSpeaker = ""
	o.activeMood = ""
	o.mu.Unlock()
	o.emit(Event{Type: EventTyping})
	o.emit(Event{Type: EventSpeaker})
}

func (o *Orchestrator) setSpeaker(s game.Speaker, mood string) {
	o.mu.Lock()
	o.activeSpeaker = s
	o.activeMood = mood
	o.mu.Unlock()
	o.emit(Event{Type: EventSpeaker, Speaker: s, Mood: mood})
}

func (o *Orchestrator) setTyping(v bool) {
	o.mu.Lock()
	o.typing = v
	o.mu.Unlock()
	o.emit(Event{Type: EventTyping, Typing: v})
}

func (o *Orchestrator) setWhisper(text string) {
	o.mu.Lock()
	o.whisper = text
	o.mu.Unlock()
	o.emit(Event{Type: EventWhisper, Whisper: text})
}

// clearWhisperIf clears the transient whisper only if it still shows
// text; a later sequence may have replaced it.
func (o *Orchestrator) clearWhisperIf(text string) {
	o.mu.Lock()
	if o.whisper != text {
		o.mu.Unlock()
		return
	}
	o.whisper = ""
	o.mu.Unlock()
	o.emit(Event{Type: EventWhisper})
}

func (o *Orchestrator) setReveal(v bool) {
	o.mu.Lock()
	o.showReveal = v
	o.mu.Unlock()
	o.emit(Event{Type: EventReveal, Reveal: v})
}

func (o *Orchestrator) appendMessage(m game.Message) {
	o.mu.Lock()
	o.st.AppendMessage(m)
	msg := o.st.Transcript[len(o.st.Transcript)-1]
	o.mu.Unlock()
	o.emit(Event{Type: EventMessage, Message: &msg})
}

// mutateState runs fn against the session state under the lock and
// emits a state event.
func (o *Orchestrator) mutateState(fn func(*game.State)) {
	o.mu.Lock()
	fn(o.st)
	o.mu.Unlock()
	o.emit(Event{Type: EventState})
}

// Presentation-facing snapshot accessors.

// Snapshot returns a copy of the session state safe to read from
// another goroutine.
func (o *Orchestrator) Snapshot() game.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	cp := *o.st
	cp.Evidence = append([]string(nil), o.st.Evidence...)
	cp.RevelationsUnlocked = append([]string(nil), o.st.RevelationsUnlocked...)
	cp.Transcript = append([]game.Message(nil), o.st.Transcript...)
	return cp
}

// ActiveSpeaker returns the currently speaking character and its mood
// snapshot, or empty values between sequences.
func (o *Orchestrator) ActiveSpeaker() (game.Speaker, string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.activeSpeaker, o.activeMood
}

func (o *Orchestrator) IsTyping() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.typing
}

// Whisper returns the transient AI whisper text, if one is showing.
func (o *Orchestrator) Whisper() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.whisper
}

// ShowReveal reports whether the one-time dramatic AI reveal is showing.
func (o *Orchestrator) ShowReveal() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.showReveal
}

// PlayIntro runs the fixed opening script once at session start, then
// moves the session into the investigation phase.
func (o *Orchestrator) PlayIntro(ctx context.Context) error {
	if err := o.begin(); err != nil {
		return err
	}
	defer o.end()

	steps := make([]Step, 0, len(game.IntroScript())*3+1)
	for _, m := range game.IntroScript() {
		msg := m
		steps = append(steps,
			Step{Do: func() {
				o.setSpeaker(msg.Speaker, msg.Mood)
				o.setTyping(true)
			}},
			Step{Delay: o.timings.IntroType, Do: func() {
				o.appendMessage(msg)
				o.setTyping(false)
			}},
			Step{Delay: o.timings.IntroPause},
		)
	}
	steps = append(steps, Step{Do: func() {
		o.mutateState(func(st *game.State) { st.SetPhase(game.PhaseInvestigation) })
	}})

	if err := o.seq.Run(ctx, steps); err != nil {
		return err
	}
	o.emit(Event{Type: EventDone})
	return nil
}

// SendMessage handles one player utterance end to end: append the
// player line, request a turn, sequence the reply, apply state
// mutations, and run the finale if the turn triggers it. The normalized
// turn is returned; a degraded exchange returns a nil turn and nil
// error. ErrSequenceInProgress is returned if another sequence is
// running.
func (o *Orchestrator) SendMessage(ctx context.Context, playerMessage string) (*game.Turn, error) {
	if err := o.begin(); err != nil {
		return nil, err
	}
	defer o.end()

	// History snapshot excludes the line being sent.
	o.mu.Lock()
	history := append([]game.Message(nil), o.st.HistoryForPrompt()...)
	o.mu.Unlock()

	o.appendMessage(game.Message{Speaker: game.SpeakerPlayer, Text: playerMessage})
	o.setTyping(true)

	turn, err := o.provider.NextTurn(ctx, playerMessage, o.st, history)
	if err != nil {
		// Degraded path: one fixed in-character line, no retry, no
		// state mutation beyond the transcript.
		o.logger.Warn("Turn request failed, degrading", "error", err)
		o.setSpeaker(game.SpeakerSuspect, string(game.MoodNervous))
		o.appendMessage(game.Message{
			Speaker: game.SpeakerSuspect,
			Text:    game.DegradedResponseLine,
			Mood:    string(game.MoodNervous),
		})
		return nil, nil
	}

	o.mu.Lock()
	turn.Normalize(o.st.SuspectMood)
	o.mu.Unlock()

	if err := o.seq.Run(ctx, o.turnSteps(turn)); err != nil {
		return nil, err
	}

	o.applyTurnState(turn)

	if turn.TriggerEnding {
		if err := o.runFinale(ctx); err != nil {
			return nil, err
		}
	}

	o.emit(Event{Type: EventDone})
	return turn, nil
}

// turnSteps expands a turn into the designed sequence: detective first,
// then the AI whisper, then the suspect.
func (o *Orchestrator) turnSteps(turn *game.Turn) []Step {
	steps := make([]Step, 0, 10)

	if turn.DetectiveResponse != "" {
		mood := turn.DetectiveMood
		if mood == "" {
			mood = game.MoodNeutral
		}
		steps = append(steps,
			Step{Do: func() {
				o.setSpeaker(game.SpeakerDetective, string(mood))
				if turn.DetectiveMood != "" {
					o.mutateState(func(st *game.State) { st.UpdateMoods(turn.DetectiveMood, "") })
				}
				o.setTyping(true)
			}},
			Step{Delay: o.timings.DetectiveType, Do: func() {
				o.appendMessage(game.Message{
					Speaker: game.SpeakerDetective,
					Text:    turn.DetectiveResponse,
					Mood:    string(turn.DetectiveMood),
				})
				o.setTyping(false)
			}},
			Step{Delay: o.timings.DetectivePause},
		)
	}

	if turn.AIWhisper != "" {
		o.mu.Lock()
		revealed := o.st.AIRevealed
		o.mu.Unlock()
		if !revealed {
			steps = append(steps,
				Step{Do: func() {
					o.setReveal(true)
					o.mutateState(func(st *game.State) { st.RevealAI() })
				}},
				Step{Delay: o.timings.RevealHold, Do: func() {
					o.setReveal(false)
				}},
			)
		}
		steps = append(steps,
			Step{Do: func() {
				o.setSpeaker(game.SpeakerAIWhisper, "")
				o.setWhisper(turn.AIWhisper)
				o.setTyping(true)
			}},
			Step{Delay: o.timings.WhisperType, Do: func() {
				o.appendMessage(game.Message{
					Speaker: game.SpeakerAIWhisper,
					Text:    turn.AIWhisper,
				})
				o.setTyping(false)
			}},
			Step{Delay: o.timings.WhisperPause, Do: func() {
				// Fire-and-forget expiry of the transient whisper text.
				o.seq.Detach(o.timings.WhisperLinger, func() {
					o.clearWhisperIf(turn.AIWhisper)
				})
			}},
		)
	}

	if turn.SuspectResponse != "" {
		// "neutral" is only a speaker-tag default here; it is not part
		// of the suspect mood vocabulary.
		moodLabel := string(turn.SuspectMood)
		if moodLabel == "" {
			moodLabel = "neutral"
		}
		steps = append(steps,
			Step{Do: func() {
				o.setSpeaker(game.SpeakerSuspect, moodLabel)
				if turn.SuspectMood != "" {
					o.mutateState(func(st *game.State) { st.UpdateMoods("", turn.SuspectMood) })
				}
				o.setTyping(true)
			}},
			Step{Delay: o.timings.SuspectType, Do: func() {
				o.appendMessage(game.Message{
					Speaker: game.SpeakerSuspect,
					Text:    turn.SuspectResponse,
					Mood:    string(turn.SuspectMood),
				})
				o.setTyping(false)
			}},
		)
	}

	return steps
}

// applyTurnState applies the numeric and collection mutations after the
// message sequence, regardless of which sub-turns fired.
func (o *Orchestrator) applyTurnState(turn *game.Turn) {
	o.mutateState(func(st *game.State) {
		if turn.TensionDelta != 0 {
			st.UpdateTension(turn.TensionDelta)
		}
		for _, e := range turn.NewEvidence {
			st.AddEvidence(e)
			if e == "USB Key Location" {
				st.FindUSBKey()
			}
		}
		if turn.NewPhase != "" {
			st.SetPhase(turn.NewPhase)
		}
	})
}

// runFinale plays the fixed five-beat closing sequence. It is not
// interruptible or re-entrant; it runs inside the caller's sequencing
// slot and assumes it completes.
func (o *Orchestrator) runFinale(ctx context.Context) error {
	steps := []Step{
		{Do: func() {
			o.setSpeaker(game.SpeakerAIWhisper, "")
			o.setWhisper(game.FarewellWhisper)
		}},
		{Delay: o.timings.FarewellHold, Do: func() {
			o.mutateState(func(st *game.State) { st.DisappearAI() })
			o.setWhisper("")
		}},
		{Delay: o.timings.FarewellPause, Do: func() {
			o.setSpeaker(game.SpeakerSuspect, string(game.MoodCrying))
			o.mutateState(func(st *game.State) { st.UpdateMoods("", game.MoodCrying) })
		}},
		{Delay: o.timings.ConfessionDelay, Do: func() {
			o.appendMessage(game.Message{
				Speaker: game.SpeakerSuspect,
				Text:    game.ConfessionLine,
				Mood:    string(game.MoodCrying),
			})
		}},
		{Delay: o.timings.ConfessionPause, Do: func() {
			o.setSpeaker(game.SpeakerSuspect, string(game.MoodBreakingDown))
			o.mutateState(func(st *game.State) { st.UpdateMoods("", game.MoodBreakingDown) })
			o.appendMessage(game.Message{
				Speaker: game.SpeakerSuspect,
				Text:    game.USBLocationLine,
				Mood:    string(game.MoodBreakingDown),
			})
		}},
		{Delay: o.timings.BreakdownPause, Do: func() {
			o.setSpeaker(game.SpeakerDetective, string(game.MoodSupportive))
			o.mutateState(func(st *game.State) { st.UpdateMoods(game.MoodSupportive, "") })
		}},
		{Delay: o.timings.ClosingDelay, Do: func() {
			o.appendMessage(game.Message{
				Speaker: game.SpeakerDetective,
				Text:    game.DetectiveClosingLine,
				Mood:    string(game.MoodSupportive),
			})
		}},
		{Delay: o.timings.ClosingPause, Do: func() {
			o.mutateState(func(st *game.State) { st.SetPhase(game.PhaseEnding) })
		}},
		{Delay: o.timings.EndingPause, Do: func() {
			o.mutateState(func(st *game.State) { st.EndCase() })
		}},
	}
	return o.seq.Run(ctx, steps)
}
