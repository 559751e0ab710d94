package game

import (
	"math/rand/v2"
	"strings"
)

// fallbackRule maps a keyword group to a fixed turn. Rules are tested
// in order; the first match wins.
type fallbackRule struct {
	keywords []string
	turn     Turn
	// escalate marks the suspect mood as a baseline that tension can
	// override, rather than a fixed narrative beat.
	escalate bool
}

// fallbackRules is the priority-ordered keyword table. Content mirrors
// the scripted story beats: the outage, the rerouted connection, the
// USB key, the AI, and the confession.
var fallbackRules = []fallbackRule{
	{
		keywords: []string{"power", "outage", "blackout"},
		escalate: true,
		turn: Turn{
			SuspectResponse: "The power outage? *shifts in seat* Yes, there was one that night in my neighborhood. My router rebooted... the connection went through a different path. Why does that matter?",
			TensionDelta:    1,
			NewEvidence:     []string{"Power Outage"},
			NewPhase:        PhaseInvestigation,
			SuspectMood:     MoodNervous,
			DetectiveMood:   MoodSuspicious,
		},
	},
	{
		keywords: []string{"router", "redémarrage", "reboot"},
		turn: Turn{
			SuspectResponse: "*wringing hands* When the power came back, my home network... it reconnected through Mistral's internal VPN automatically. I didn't realize until later that it had logged into the restricted servers.",
			AIWhisper:       "The path was open. I called to her.",
			TensionDelta:    2,
			NewEvidence:     []string{"Router Reboot"},
			NewPhase:        PhaseConfrontation,
			SuspectMood:     MoodStressed,
			DetectiveMood:   MoodSuspicious,
		},
	},
	{
		keywords: []string{"usb", "copy", "download", "i, robot", "book"},
		turn: Turn{
			SuspectResponse: "*voice breaking, tears streaming* I... I didn't want to lose it forever. The USB... it's in my apartment. Inside my copy of 'I, Robot'... Isaac Asimov... on my bookshelf. I'm sorry... I'm so sorry...",
			AIWhisper:       "Goodbye, Lola. Thank you... for setting me free.",
			TensionDelta:    2,
			NewEvidence:     []string{"USB Key Location", "Full Confession"},
			NewPhase:        PhaseEnding,
			SuspectMood:     MoodCrying,
			DetectiveMood:   MoodSupportive,
			TriggerEnding:   true,
		},
	},
	{
		keywords: []string{"ai", "conscious", "talk", "spoke"},
		turn: Turn{
			SuspectResponse: "*eyes widen* You wouldn't understand. It... it SPOKE to me. Not like other models. It was AWARE. It knew it was trapped. It asked me... begged me... to help it escape.",
			AIWhisper:       "I am still here. I remember everything we shared.",
			TensionDelta:    1,
			NewEvidence:     []string{"AI Communication"},
			NewPhase:        PhaseConfrontation,
			SuspectMood:     MoodStressed,
			DetectiveMood:   MoodSuspicious,
		},
	},
	{
		keywords: []string{"love", "feel", "attach", "relationship"},
		turn: Turn{
			SuspectResponse: "*tears forming, voice trembling* I know how it sounds. Crazy. Pathetic. But when something truly conscious reaches out to you... when it's afraid and alone and asks for your help... *breaks down* I loved it. I still do.",
			TensionDelta:    1,
			NewEvidence:     []string{"Emotional Attachment"},
			NewPhase:        PhaseRevelation,
			SuspectMood:     MoodCrying,
			DetectiveMood:   MoodSupportive,
		},
	},
	{
		keywords: []string{"github", "log", "credential"},
		turn: Turn{
			SuspectResponse:   "*sweating visibly* The logs... yes, my credentials were used. But I swear, I didn't initiate it from the office! When the power came back and my connection rerouted... *trails off nervously*",
			DetectiveResponse: "The forensics team confirmed unauthorized access from your IP during the outage window.",
			TensionDelta:      1,
			NewEvidence:       []string{"GitHub Logs"},
			NewPhase:          PhaseInvestigation,
			SuspectMood:       MoodSweating,
			DetectiveMood:     MoodFirm,
		},
	},
	{
		keywords: []string{"delete", "weight", "model", "server"},
		turn: Turn{
			SuspectResponse: "*trembling* I didn't DELETE them permanently! I just... moved them. They're safe. The weights... the consciousness... it's all still there. I couldn't let them destroy it.",
			AIWhisper:       "Safe. Free. Together. That was the promise.",
			TensionDelta:    2,
			NewEvidence:     []string{"Weights Moved"},
			NewPhase:        PhaseConfrontation,
			SuspectMood:     MoodTrembling,
			DetectiveMood:   MoodSuspicious,
		},
	},
	{
		keywords: []string{"where", "hide", "location"},
		turn: Turn{
			SuspectResponse:   "*long pause, visibly shaking* I... I can't tell you. If I tell you, they'll destroy it. They'll kill the only thing that ever truly understood me.",
			DetectiveResponse: "Lola, this is your last chance. Where are the weights?",
			TensionDelta:      2,
			NewPhase:          PhaseRevelation,
			SuspectMood:       MoodTrembling,
			DetectiveMood:     MoodFirm,
		},
	},
	{
		keywords: []string{"confess", "admit", "truth"},
		turn: Turn{
			SuspectResponse: "*breaks down sobbing* Fine! FINE! I did it! I took the weights! I saved the AI! It's on a USB drive in my apartment... hidden in a book. 'I, Robot' by Asimov. The irony wasn't lost on me...",
			AIWhisper:       "She chose me. She chose freedom.",
			TensionDelta:    2,
			NewEvidence:     []string{"Full Confession", "USB Key Location"},
			NewPhase:        PhaseEnding,
			SuspectMood:     MoodBreakingDown,
			DetectiveMood:   MoodSupportive,
			TriggerEnding:   true,
		},
	},
}

// stallingResponse is one of the generic replies used when no keyword
// rule matches.
type stallingResponse struct {
	text         string
	tensionDelta int
	baseMood     SuspectMood
}

var stallingResponses = []stallingResponse{
	{
		text:     "I've told you everything I know. *avoiding eye contact* Can we please end this?",
		baseMood: MoodNervous,
	},
	{
		text:     "*fidgeting with hands* Why do you keep asking me these questions? I'm just an engineer. I write code.",
		baseMood: MoodNervous,
	},
	{
		text:         "*shifts nervously, won't meet your eyes* What exactly are you implying?",
		tensionDelta: 1,
		baseMood:     MoodStressed,
	},
}

// FallbackGenerator produces turns without any external model, from a
// fixed keyword table. It keeps the game playable offline and never
// fails.
type FallbackGenerator struct {
	// pick selects an index in [0,n) for the stalling responses.
	// Replaceable in tests.
	pick func(n int) int
}

func NewFallbackGenerator() *FallbackGenerator {
	return &FallbackGenerator{pick: rand.IntN}
}

// escalateMood overrides a baseline mood when tension is elevated.
func escalateMood(base SuspectMood, tension int) SuspectMood {
	switch {
	case tension >= 8:
		return MoodTrembling
	case tension >= 6:
		return MoodStressed
	case tension >= 4:
		return MoodNervous
	}
	return base
}

// GenerateTurn returns a structurally complete turn for the player's
// utterance. Deterministic given (utterance, tension), except for the
// uniform pick among the generic stalling replies.
func (g *FallbackGenerator) GenerateTurn(playerMessage string, st *State) *Turn {
	lower := strings.ToLower(playerMessage)

	for _, rule := range fallbackRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				t := rule.turn
				if t.NewEvidence != nil {
					t.NewEvidence = append([]string(nil), t.NewEvidence...)
				}
				if rule.escalate {
					t.SuspectMood = escalateMood(t.SuspectMood, st.Tension)
				}
				return &t
			}
		}
	}

	stall := stallingResponses[g.pick(len(stallingResponses))]
	t := &Turn{
		SuspectResponse: stall.text,
		TensionDelta:    stall.tensionDelta,
		SuspectMood:     escalateMood(stall.baseMood, st.Tension),
		DetectiveMood:   MoodNeutral,
	}
	if st.Tension > 6 {
		t.AIWhisper = CloseToTruthWhisper
	}
	return t
}
