package game

import "time"

// Speaker identifies who a transcript line belongs to.
type Speaker string

const (
	SpeakerDetective Speaker = "detective"
	SpeakerSuspect   Speaker = "suspect"
	SpeakerPlayer    Speaker = "player"
	SpeakerAIWhisper Speaker = "ai_whisper"
	SpeakerNarrator  Speaker = "narrator"
)

// Message is a single immutable transcript entry. Mood is a snapshot of
// the speaker's mood at the moment the line was delivered, when one
// applies.
type Message struct {
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Mood      string    `json:"mood,omitempty"`
}

// PromptHistoryLimit bounds how much conversation is replayed to the LLM.
const PromptHistoryLimit = 10

// AppendMessage adds a line to the transcript. The transcript is
// append-only; past entries are never rewritten.
func (s *State) AppendMessage(m Message) {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	s.Transcript = append(s.Transcript, m)
}

// HistoryForPrompt returns the most recent transcript entries, up to
// PromptHistoryLimit.
func (s *State) HistoryForPrompt() []Message {
	if len(s.Transcript) <= PromptHistoryLimit {
		return s.Transcript
	}
	return s.Transcript[len(s.Transcript)-PromptHistoryLimit:]
}
