package dialogue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noirlabs/interrogation-engine/pkg/game"
)

// scriptedProvider returns canned turns (or errors) in order.
type scriptedProvider struct {
	turns []*game.Turn
	errs  []error
	calls int

	// block, when set, is received from before returning; started is
	// closed on first entry. Used to hold a turn open while another
	// submission is attempted.
	block   chan struct{}
	started chan struct{}

	lastHistory []game.Message
}

func (p *scriptedProvider) NextTurn(_ context.Context, _ string, _ *game.State, history []game.Message) (*game.Turn, error) {
	if p.started != nil {
		close(p.started)
		p.started = nil
	}
	if p.block != nil {
		<-p.block
	}
	p.lastHistory = history
	i := p.calls
	p.calls++
	var err error
	if i < len(p.errs) {
		err = p.errs[i]
	}
	if err != nil {
		return nil, err
	}
	if i < len(p.turns) {
		return p.turns[i], nil
	}
	return &game.Turn{}, nil
}

// eventRecorder collects events for assertions.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) listen(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) ofType(t EventType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func newTestOrchestrator(st *game.State, p TurnProvider, rec *eventRecorder) *Orchestrator {
	opts := []Option{WithTimings(InstantTimings())}
	if rec != nil {
		opts = append(opts, WithListener(rec.listen))
	}
	return New(st, p, opts...)
}

func speakers(msgs []game.Message) []game.Speaker {
	out := make([]game.Speaker, len(msgs))
	for i, m := range msgs {
		out[i] = m.Speaker
	}
	return out
}

func TestOrchestrator_PlayIntro(t *testing.T) {
	st := game.NewState()
	rec := &eventRecorder{}
	o := newTestOrchestrator(st, &scriptedProvider{}, rec)

	require.NoError(t, o.PlayIntro(context.Background()))

	require.Len(t, st.Transcript, 5)
	assert.Equal(t, []game.Speaker{
		game.SpeakerNarrator,
		game.SpeakerDetective,
		game.SpeakerSuspect,
		game.SpeakerDetective,
		game.SpeakerNarrator,
	}, speakers(st.Transcript))
	assert.Equal(t, game.PhaseInvestigation, st.Phase)

	speaker, mood := o.ActiveSpeaker()
	assert.Empty(t, speaker)
	assert.Empty(t, mood)
	assert.False(t, o.IsTyping())
	assert.NotEmpty(t, rec.ofType(EventDone))
}

func TestOrchestrator_TurnExpansionOrder(t *testing.T) {
	st := game.NewState()
	st.SetPhase(game.PhaseInvestigation)
	p := &scriptedProvider{turns: []*game.Turn{{
		DetectiveResponse: "The logs say otherwise.",
		AIWhisper:         "She is afraid.",
		SuspectResponse:   "That's not true!",
		DetectiveMood:     game.MoodFirm,
		SuspectMood:       game.MoodStressed,
		TensionDelta:      1,
		NewEvidence:       []string{"GitHub Logs"},
		NewPhase:          game.PhaseConfrontation,
	}}}
	o := newTestOrchestrator(st, p, nil)

	turn, err := o.SendMessage(context.Background(), "Explain the access logs.")
	require.NoError(t, err)
	require.NotNil(t, turn)

	// Player first, then detective, whisper, suspect, in that exact order.
	require.Len(t, st.Transcript, 4)
	assert.Equal(t, []game.Speaker{
		game.SpeakerPlayer,
		game.SpeakerDetective,
		game.SpeakerAIWhisper,
		game.SpeakerSuspect,
	}, speakers(st.Transcript))
	assert.Equal(t, "Explain the access logs.", st.Transcript[0].Text)

	// Mutations applied after the sequence.
	assert.Equal(t, 3, st.Tension)
	assert.Equal(t, []string{"GitHub Logs"}, st.Evidence)
	assert.Equal(t, game.PhaseConfrontation, st.Phase)
	assert.Equal(t, game.MoodFirm, st.DetectiveMood)
	assert.Equal(t, game.MoodStressed, st.SuspectMood)
}

func TestOrchestrator_FirstWhisperRevealsAI(t *testing.T) {
	st := game.NewState()
	rec := &eventRecorder{}
	p := &scriptedProvider{turns: []*game.Turn{
		{AIWhisper: "I am here.", SuspectResponse: "Did you hear that?"},
		{AIWhisper: "Still here.", SuspectResponse: "..."},
	}}
	o := newTestOrchestrator(st, p, rec)

	_, err := o.SendMessage(context.Background(), "Who else had access?")
	require.NoError(t, err)
	assert.True(t, st.AIRevealed)

	revealEvents := rec.ofType(EventReveal)
	require.Len(t, revealEvents, 2) // on, then off
	assert.True(t, revealEvents[0].Reveal)
	assert.False(t, revealEvents[1].Reveal)

	// The reveal is one-time; a second whisper goes straight through.
	_, err = o.SendMessage(context.Background(), "What was that voice?")
	require.NoError(t, err)
	assert.Len(t, rec.ofType(EventReveal), 2)
}

func TestOrchestrator_DegradedPathOnProviderError(t *testing.T) {
	st := game.NewState()
	st.SetPhase(game.PhaseInvestigation)
	st.Tension = 5
	st.AddEvidence("Power Outage")
	p := &scriptedProvider{errs: []error{errors.New("gateway unreachable")}}
	o := newTestOrchestrator(st, p, nil)

	turn, err := o.SendMessage(context.Background(), "Answer me.")
	require.NoError(t, err)
	assert.Nil(t, turn)

	// Exactly the player line plus the one fixed degraded reply.
	require.Len(t, st.Transcript, 2)
	degraded := st.Transcript[1]
	assert.Equal(t, game.SpeakerSuspect, degraded.Speaker)
	assert.Equal(t, game.DegradedResponseLine, degraded.Text)
	assert.Equal(t, string(game.MoodNervous), degraded.Mood)

	// No state fields besides the transcript change.
	assert.Equal(t, 5, st.Tension)
	assert.Equal(t, []string{"Power Outage"}, st.Evidence)
	assert.Equal(t, game.PhaseInvestigation, st.Phase)
	assert.Equal(t, game.MoodCalm, st.SuspectMood)
	assert.False(t, st.CaseEnded)
	assert.False(t, o.IsTyping())
}

func TestOrchestrator_FinaleSequence(t *testing.T) {
	st := game.NewState()
	st.SetPhase(game.PhaseRevelation)
	p := &scriptedProvider{turns: []*game.Turn{{
		SuspectResponse: "It's in the book...",
		SuspectMood:     game.MoodCrying,
		NewEvidence:     []string{"USB Key Location"},
		NewPhase:        game.PhaseEnding,
		TensionDelta:    2,
		TriggerEnding:   true,
	}}}
	o := newTestOrchestrator(st, p, nil)

	turn, err := o.SendMessage(context.Background(), "Where is the USB?")
	require.NoError(t, err)
	require.NotNil(t, turn)

	// player, suspect reply, then the three finale lines.
	require.Len(t, st.Transcript, 5)
	assert.Equal(t, game.ConfessionLine, st.Transcript[2].Text)
	assert.Equal(t, game.USBLocationLine, st.Transcript[3].Text)
	assert.Equal(t, game.DetectiveClosingLine, st.Transcript[4].Text)

	assert.True(t, st.AIDisappeared)
	assert.True(t, st.CaseEnded)
	assert.True(t, st.USBKeyFound)
	assert.Equal(t, game.PhaseEnding, st.Phase)
	assert.Equal(t, game.MoodBreakingDown, st.SuspectMood)
	assert.Equal(t, game.MoodSupportive, st.DetectiveMood)
	assert.Empty(t, o.Whisper())
}

func TestOrchestrator_RejectsConcurrentTurns(t *testing.T) {
	st := game.NewState()
	block := make(chan struct{})
	started := make(chan struct{})
	p := &scriptedProvider{
		block:   block,
		started: started,
		turns:   []*game.Turn{{SuspectResponse: "I was home all night."}},
	}
	o := newTestOrchestrator(st, p, nil)

	done := make(chan error, 1)
	go func() {
		_, err := o.SendMessage(context.Background(), "first")
		done <- err
	}()

	// Wait until the first turn is holding the sequencing slot.
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("first turn never reached the provider")
	}

	_, err := o.SendMessage(context.Background(), "second")
	assert.ErrorIs(t, err, ErrSequenceInProgress)

	close(block)
	require.NoError(t, <-done)

	// Only the first submission made it into the transcript.
	require.Len(t, st.Transcript, 2)
	assert.Equal(t, "first", st.Transcript[0].Text)
}

func TestOrchestrator_HistoryExcludesCurrentLine(t *testing.T) {
	st := game.NewState()
	st.AppendMessage(game.Message{Speaker: game.SpeakerSuspect, Text: "earlier answer"})
	p := &scriptedProvider{turns: []*game.Turn{{SuspectResponse: "fine"}}}
	o := newTestOrchestrator(st, p, nil)

	_, err := o.SendMessage(context.Background(), "new question")
	require.NoError(t, err)

	require.Len(t, p.lastHistory, 1)
	assert.Equal(t, "earlier answer", p.lastHistory[0].Text)
}

func TestOrchestrator_ContextCancellation(t *testing.T) {
	st := game.NewState()
	p := &scriptedProvider{turns: []*game.Turn{{SuspectResponse: "..."}}}
	o := New(st, p, WithTimings(Timings{SuspectType: time.Minute}))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := o.SendMessage(ctx, "question")
	require.ErrorIs(t, err, context.Canceled)

	// A new sequence can start after a cancelled one; the provider's
	// next canned turn is empty, so no timed steps remain.
	_, err = o.SendMessage(context.Background(), "again")
	assert.NoError(t, err)
}
