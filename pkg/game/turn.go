package game

// Turn is the structured result of one player-utterance exchange,
// regardless of whether it came from the LLM gateway or the fallback
// generator. The JSON field names are the wire contract the model is
// instructed to produce.
type Turn struct {
	SuspectResponse   string        `json:"suspectResponse,omitempty"`
	DetectiveResponse string        `json:"detectiveResponse,omitempty"`
	AIWhisper         string        `json:"aiWhisper,omitempty"`
	TensionDelta      int           `json:"tensionDelta,omitempty"`
	NewEvidence       []string      `json:"newEvidence,omitempty"`
	NewPhase          Phase         `json:"newPhase,omitempty"`
	SuspectMood       SuspectMood   `json:"suspectMood,omitempty"`
	DetectiveMood     DetectiveMood `json:"detectiveMood,omitempty"`
	TriggerEnding     bool          `json:"triggerEnding,omitempty"`
}

const (
	MinTensionDelta = -2
	MaxTensionDelta = 2
)

// ValidSuspectMood reports whether m is one of the recognized suspect moods.
func ValidSuspectMood(m SuspectMood) bool {
	switch m {
	case MoodCalm, MoodNervous, MoodStressed,
		MoodSweating, MoodTrembling, MoodCrying, MoodBreakingDown:
		return true
	}
	return false
}

// ValidDetectiveMood reports whether m is one of the recognized detective moods.
func ValidDetectiveMood(m DetectiveMood) bool {
	switch m {
	case MoodNeutral, MoodSuspicious, MoodFirm, MoodSupportive:
		return true
	}
	return false
}

// ValidPhase reports whether p is one of the recognized phases.
func ValidPhase(p Phase) bool {
	switch p {
	case PhaseIntroduction, PhaseInvestigation, PhaseConfrontation,
		PhaseRevelation, PhaseEnding, PhaseCredits:
		return true
	}
	return false
}

// Normalize coerces gateway output into safe values: unknown suspect
// moods fall back to the session's current mood, unknown detective moods
// to neutral, unknown phases are dropped, and the tension delta is
// clamped to [MinTensionDelta, MaxTensionDelta]. LLM output is never
// trusted to hold the enum contract.
func (t *Turn) Normalize(currentSuspectMood SuspectMood) {
	if t.SuspectMood != "" && !ValidSuspectMood(t.SuspectMood) {
		t.SuspectMood = currentSuspectMood
	}
	if t.DetectiveMood != "" && !ValidDetectiveMood(t.DetectiveMood) {
		t.DetectiveMood = MoodNeutral
	}
	if t.NewPhase != "" && !ValidPhase(t.NewPhase) {
		t.NewPhase = ""
	}
	if t.TensionDelta < MinTensionDelta {
		t.TensionDelta = MinTensionDelta
	}
	if t.TensionDelta > MaxTensionDelta {
		t.TensionDelta = MaxTensionDelta
	}
}
