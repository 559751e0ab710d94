package game

import (
	"time"

	"github.com/google/uuid"
)

// Phase is the coarse narrative stage of an interrogation session.
type Phase string

const (
	PhaseIntroduction  Phase = "introduction"
	PhaseInvestigation Phase = "investigation"
	PhaseConfrontation Phase = "confrontation"
	PhaseRevelation    Phase = "revelation"
	PhaseEnding        Phase = "ending"
	PhaseCredits       Phase = "credits"
)

// SuspectMood is Lola's emotional state. The narrative intends it to
// escalate toward breaking_down, but nothing enforces that.
type SuspectMood string

const (
	MoodCalm         SuspectMood = "calm"
	MoodNervous      SuspectMood = "nervous"
	MoodStressed     SuspectMood = "stressed"
	MoodSweating     SuspectMood = "sweating"
	MoodTrembling    SuspectMood = "trembling"
	MoodCrying       SuspectMood = "crying"
	MoodBreakingDown SuspectMood = "breaking_down"
)

// DetectiveMood is Moreau's interviewing posture.
type DetectiveMood string

const (
	MoodNeutral    DetectiveMood = "neutral"
	MoodSuspicious DetectiveMood = "suspicious"
	MoodFirm       DetectiveMood = "firm"
	MoodSupportive DetectiveMood = "supportive"
)

const (
	MinTension = 0
	MaxTension = 10
)

// State is the full state of one interrogation session. It is mutated
// only through its own methods; callers never write fields directly.
type State struct {
	ID            uuid.UUID     `json:"id"`
	Phase         Phase         `json:"phase"`
	Tension       int           `json:"tension"`
	Evidence      []string      `json:"evidence"`
	DetectiveMood DetectiveMood `json:"detective_mood"`
	SuspectMood   SuspectMood   `json:"suspect_mood"`

	// RevelationsUnlocked is a reserved extension point; nothing in the
	// dialogue flow consumes it yet.
	RevelationsUnlocked []string `json:"revelations_unlocked,omitempty"`

	// One-way latches. Set true once per session, never reset.
	USBKeyFound   bool `json:"usb_key_found"`
	AIRevealed    bool `json:"ai_revealed"`
	AIDisappeared bool `json:"ai_disappeared"`
	CaseEnded     bool `json:"case_ended"`

	Transcript []Message `json:"transcript,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// NewState creates a session at the opening beat: the detective is
// professional, Lola is composed, and the room is only slightly tense.
func NewState() *State {
	return &State{
		ID:            uuid.New(),
		Phase:         PhaseIntroduction,
		Tension:       2,
		Evidence:      make([]string, 0),
		DetectiveMood: MoodNeutral,
		SuspectMood:   MoodCalm,
		Transcript:    make([]Message, 0),
	}
}

// UpdateTension adds delta to tension and clamps the result to
// [MinTension, MaxTension]. Out-of-range deltas are silently absorbed.
func (s *State) UpdateTension(delta int) {
	s.Tension += delta
	if s.Tension < MinTension {
		s.Tension = MinTension
	}
	if s.Tension > MaxTension {
		s.Tension = MaxTension
	}
}

// AddEvidence appends item to the evidence list unless it is already
// present. Matching is case-sensitive and exact.
func (s *State) AddEvidence(item string) {
	for _, e := range s.Evidence {
		if e == item {
			return
		}
	}
	s.Evidence = append(s.Evidence, item)
}

// SetPhase overwrites the phase unconditionally. Transition validity is
// the caller's problem.
func (s *State) SetPhase(p Phase) {
	s.Phase = p
}

// UpdateMoods sets either mood; an empty value leaves that mood unchanged.
func (s *State) UpdateMoods(detective DetectiveMood, suspect SuspectMood) {
	if detective != "" {
		s.DetectiveMood = detective
	}
	if suspect != "" {
		s.SuspectMood = suspect
	}
}

// UnlockRevelation records a revelation label, deduplicated by value.
func (s *State) UnlockRevelation(r string) {
	for _, u := range s.RevelationsUnlocked {
		if u == r {
			return
		}
	}
	s.RevelationsUnlocked = append(s.RevelationsUnlocked, r)
}

func (s *State) FindUSBKey() {
	s.USBKeyFound = true
}

func (s *State) RevealAI() {
	s.AIRevealed = true
}

func (s *State) DisappearAI() {
	s.AIDisappeared = true
}

// EndCase latches the case closed and forces the ending phase as a
// single compound mutation.
func (s *State) EndCase() {
	s.CaseEnded = true
	s.Phase = PhaseEnding
}
