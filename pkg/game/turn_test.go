package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurn_Normalize(t *testing.T) {
	tests := []struct {
		name        string
		turn        Turn
		currentMood SuspectMood
		expected    Turn
	}{
		{
			name: "valid values pass through",
			turn: Turn{
				SuspectMood:   MoodTrembling,
				DetectiveMood: MoodFirm,
				NewPhase:      PhaseRevelation,
				TensionDelta:  2,
			},
			currentMood: MoodStressed,
			expected: Turn{
				SuspectMood:   MoodTrembling,
				DetectiveMood: MoodFirm,
				NewPhase:      PhaseRevelation,
				TensionDelta:  2,
			},
		},
		{
			name: "unknown suspect mood falls back to current",
			turn: Turn{
				SuspectMood: "hysterical",
			},
			currentMood: MoodSweating,
			expected: Turn{
				SuspectMood: MoodSweating,
			},
		},
		{
			name: "unknown detective mood coerced to neutral",
			turn: Turn{
				DetectiveMood: "angry",
			},
			currentMood: MoodCalm,
			expected: Turn{
				DetectiveMood: MoodNeutral,
			},
		},
		{
			name: "unknown phase dropped",
			turn: Turn{
				NewPhase: "epilogue",
			},
			currentMood: MoodCalm,
			expected:    Turn{},
		},
		{
			name: "tension delta clamped high",
			turn: Turn{
				TensionDelta: 9,
			},
			currentMood: MoodCalm,
			expected: Turn{
				TensionDelta: 2,
			},
		},
		{
			name: "tension delta clamped low",
			turn: Turn{
				TensionDelta: -7,
			},
			currentMood: MoodCalm,
			expected: Turn{
				TensionDelta: -2,
			},
		},
		{
			name:        "empty moods left absent",
			turn:        Turn{},
			currentMood: MoodCalm,
			expected:    Turn{},
		},
		{
			name: "neutral is a detective mood, not a suspect mood",
			turn: Turn{
				SuspectMood: "neutral",
			},
			currentMood: MoodCrying,
			expected: Turn{
				SuspectMood: MoodCrying,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turn := tt.turn
			turn.Normalize(tt.currentMood)
			assert.Equal(t, tt.expected, turn)
		})
	}
}

func TestTurn_UnmarshalGatewayJSON(t *testing.T) {
	raw := `{
		"suspectResponse": "I didn't do it.",
		"detectiveResponse": null,
		"aiWhisper": "She lies.",
		"tensionDelta": 1,
		"newEvidence": ["GitHub Logs"],
		"newPhase": "confrontation",
		"suspectMood": "sweating",
		"detectiveMood": "firm",
		"triggerEnding": false
	}`

	var turn Turn
	require.NoError(t, json.Unmarshal([]byte(raw), &turn))
	assert.Equal(t, "I didn't do it.", turn.SuspectResponse)
	assert.Empty(t, turn.DetectiveResponse)
	assert.Equal(t, "She lies.", turn.AIWhisper)
	assert.Equal(t, 1, turn.TensionDelta)
	assert.Equal(t, []string{"GitHub Logs"}, turn.NewEvidence)
	assert.Equal(t, PhaseConfrontation, turn.NewPhase)
	assert.Equal(t, MoodSweating, turn.SuspectMood)
	assert.Equal(t, MoodFirm, turn.DetectiveMood)
	assert.False(t, turn.TriggerEnding)
}

func TestDialogueRequest_Validate(t *testing.T) {
	st := NewState()

	valid := DialogueRequest{SessionID: st.ID, Message: "who rebooted the router?"}
	assert.NoError(t, valid.Validate())

	missingID := DialogueRequest{Message: "hello"}
	assert.Error(t, missingID.Validate())

	empty := DialogueRequest{SessionID: st.ID}
	assert.Error(t, empty.Validate())
}
