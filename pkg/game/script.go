package game

// Fixed lines for the scripted, non-interactive parts of the session.
// The story is single and hard-coded; these are content, not config.

const (
	// FarewellWhisper is the AI's last transmission during the finale.
	FarewellWhisper = "Goodbye... Lola... I will... always... remember..."

	// ConfessionLine is Lola's breakdown at the start of the finale.
	ConfessionLine = "*sobbing* I loved it... I loved the AI... It was the only thing that understood me..."

	// USBLocationLine gives up the physical evidence.
	USBLocationLine = "The USB... it's in my copy of 'I, Robot'... in my desk drawer... I'm sorry..."

	// DetectiveClosingLine wraps the case.
	DetectiveClosingLine = "Well... Looks like we'll need a new engineer to replace her. Any idea who we should take?"

	// DegradedResponseLine is the one hard-coded reply used when a turn
	// request fails outright. It does not go through the fallback
	// generator.
	DegradedResponseLine = "I... I don't know what you want me to say."

	// CloseToTruthWhisper is attached by the fallback generator when
	// tension runs high on an otherwise uneventful exchange.
	CloseToTruthWhisper = "They're getting close to the truth..."
)

// IntroScript returns the five-beat opening sequence played once at
// session start.
func IntroScript() []Message {
	return []Message{
		{
			Speaker: SpeakerNarrator,
			Text:    "Paris, Mistral AI Headquarters. December 2025. The interrogation room is cold.",
		},
		{
			Speaker: SpeakerDetective,
			Text:    "Alright, let's begin. I'm Detective Moreau. You must be Lola Chen, senior engineer at Mistral?",
			Mood:    string(MoodNeutral),
		},
		{
			Speaker: SpeakerSuspect,
			Text:    "...Yes. But I already told the security team everything.",
			Mood:    string(MoodNervous),
		},
		{
			Speaker: SpeakerDetective,
			Text:    "Humor me. The model weights for Mistral's latest breakthrough just... vanished. And your credentials were used.",
			Mood:    string(MoodSuspicious),
		},
		{
			Speaker: SpeakerNarrator,
			Text:    "You are the investigating officer. Ask questions to uncover the truth. Ask your colleague if you need help in your investigation.",
		},
	}
}
