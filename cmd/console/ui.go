package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/noirlabs/interrogation-engine/pkg/dialogue"
	"github.com/noirlabs/interrogation-engine/pkg/game"
)

const PlaceHolderText = "Ask your question..."

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	orch         *dialogue.Orchestrator
	events       chan dialogue.Event
	offline      bool
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error

	// Sequence presentation state, driven by orchestrator events
	busy          bool
	typing        bool
	activeSpeaker game.Speaker
	activeMood    string
	whisper       string
	reveal        bool

	// Endgame state
	showCredits bool
	hideCredits bool // toggled with "v" to review the transcript

	// Quit confirmation state
	showQuitModal bool

	notice string
}

type dialogueEventMsg struct {
	event dialogue.Event
}

type sequenceFinishedMsg struct {
	err error
}

type clipboardMsg struct {
	err error
}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")). // noir red
			Bold(true)

	detectiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")). // steel blue
			Bold(true)

	suspectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("211")). // pale pink
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")). // grey
			Italic(true)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	whisperStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")). // violet
			Italic(true)

	moodStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	typingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	revealStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("89")). // deep magenta
			Bold(true).
			Padding(0, 1)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Bold(true).
			Align(lipgloss.Center)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(cfg *ConsoleConfig, orch *dialogue.Orchestrator, events chan dialogue.Event, offline bool) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:       cfg,
		orch:         orch,
		events:       events,
		offline:      offline,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
		busy:         true, // intro plays first
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(m.playIntro(), m.waitEvent(), textarea.Blink)
}

func (m ConsoleUI) playIntro() tea.Cmd {
	return func() tea.Msg {
		err := m.orch.PlayIntro(context.Background())
		return sequenceFinishedMsg{err}
	}
}

func (m ConsoleUI) sendMessage(input string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.orch.SendMessage(context.Background(), input)
		return sequenceFinishedMsg{err}
	}
}

func (m ConsoleUI) waitEvent() tea.Cmd {
	return func() tea.Msg {
		return dialogueEventMsg{<-m.events}
	}
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatWidth := int(float64(m.width)*0.72) - 4
		metaWidth := m.width - chatWidth - 6

		m.chatViewport.Width = chatWidth - 2
		m.chatViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(chatWidth - 4)

		m.ready = true
		m.writeChatContent()
		m.writeMetadata()

	case tea.KeyMsg:
		if m.showCredits && msg.String() == "v" && m.textarea.Value() == "" {
			m.hideCredits = !m.hideCredits
			return m, nil
		}
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			// The case is closed; only commands still work.
			if m.showCredits {
				return m, nil
			}

			m.textarea.Reset()
			m.notice = ""
			m.busy = true
			return m, m.sendMessage(input)
		}

	case dialogueEventMsg:
		m.applyEvent(msg.event)
		m.writeChatContent()
		m.writeMetadata()
		return m, m.waitEvent()

	case sequenceFinishedMsg:
		m.busy = false
		m.typing = false
		if msg.err != nil && !errors.Is(msg.err, dialogue.ErrSequenceInProgress) {
			m.err = msg.err
		}
		if m.orch.Snapshot().CaseEnded {
			m.showCredits = true
		}
		m.writeChatContent()
		m.writeMetadata()
		m.textarea.Focus()
		return m, textarea.Blink

	case clipboardMsg:
		if msg.err != nil {
			m.notice = "Copy failed: " + msg.err.Error()
		} else {
			m.notice = "Transcript copied to clipboard."
		}
		m.writeChatContent()
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m *ConsoleUI) applyEvent(e dialogue.Event) {
	switch e.Type {
	case dialogue.EventTyping:
		m.typing = e.Typing
	case dialogue.EventSpeaker:
		m.activeSpeaker = e.Speaker
		m.activeMood = e.Mood
	case dialogue.EventWhisper:
		m.whisper = e.Whisper
	case dialogue.EventReveal:
		m.reveal = e.Reveal
	case dialogue.EventMessage, dialogue.EventState, dialogue.EventDone:
		// Rendering reads the state snapshot directly.
	}
}

func speakerLabel(s game.Speaker) (string, lipgloss.Style) {
	switch s {
	case game.SpeakerDetective:
		return "Det. Moreau", detectiveStyle
	case game.SpeakerSuspect:
		return "Lola", suspectStyle
	case game.SpeakerPlayer:
		return "You", userStyle
	case game.SpeakerAIWhisper:
		return "???", whisperStyle
	default:
		return "", narratorStyle
	}
}

func formatLine(msg game.Message, width int) string {
	label, style := speakerLabel(msg.Speaker)

	switch msg.Speaker {
	case game.SpeakerNarrator:
		return narratorStyle.Render(wordwrap.String(msg.Text, width))
	case game.SpeakerAIWhisper:
		return whisperStyle.Render(wordwrap.String("◈ "+msg.Text, width))
	default:
		prefix := style.Render(label + ": ")
		body := wordwrap.String(msg.Text, width-len(label)-2)
		if msg.Mood != "" && msg.Speaker != game.SpeakerPlayer {
			body += " " + moodStyle.Render("["+msg.Mood+"]")
		}
		return prefix + body
	}
}

func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6
	if chatWidth < 20 {
		chatWidth = 20
	}

	snapshot := m.orch.Snapshot()

	var content strings.Builder
	content.WriteString(titleStyle.Render("THE MISTRAL AFFAIR") + "\n\n")
	if m.offline {
		content.WriteString(typingStyle.Render("Offline mode: no API connection, canned responses only.") + "\n\n")
	}
	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth-6)) + "\n\n")

	for _, msg := range snapshot.Transcript {
		content.WriteString(formatLine(msg, chatWidth) + "\n\n")
	}

	if m.reveal {
		content.WriteString(revealStyle.Render("UNKNOWN PRESENCE DETECTED IN INTERROGATION FEED") + "\n\n")
	}

	if m.whisper != "" {
		content.WriteString(whisperStyle.Render(wordwrap.String("◈ "+m.whisper, chatWidth)) + "\n\n")
	}

	if m.typing {
		label, _ := speakerLabel(m.activeSpeaker)
		if label == "" {
			label = "Someone"
		}
		content.WriteString(typingStyle.Render(label+" is typing...") + "\n\n")
	}

	if m.err != nil {
		content.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n\n")
	}

	if m.notice != "" {
		content.WriteString(moodStyle.Render(m.notice) + "\n\n")
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func tensionMeter(tension int) string {
	filled := tension
	if filled < game.MinTension {
		filled = game.MinTension
	}
	if filled > game.MaxTension {
		filled = game.MaxTension
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", game.MaxTension-filled)
	style := typingStyle
	if tension >= 8 {
		style = errorStyle
	}
	return style.Render(bar) + fmt.Sprintf(" %d/%d", tension, game.MaxTension)
}

func (m *ConsoleUI) writeMetadata() {
	snapshot := m.orch.Snapshot()

	var content strings.Builder
	content.WriteString(titleStyle.Render("CASE FILE") + "\n\n")

	content.WriteString("Session:\n")
	content.WriteString(snapshot.ID.String()[:8] + "...\n\n")

	content.WriteString("Phase:\n")
	content.WriteString(string(snapshot.Phase) + "\n\n")

	content.WriteString("Tension:\n")
	content.WriteString(tensionMeter(snapshot.Tension) + "\n\n")

	content.WriteString("Suspect:\n")
	content.WriteString(fmt.Sprintf("Lola Chen (%s)\n\n", snapshot.SuspectMood))

	content.WriteString("Detective:\n")
	content.WriteString(fmt.Sprintf("Moreau (%s)\n\n", snapshot.DetectiveMood))

	content.WriteString("Evidence:\n")
	if len(snapshot.Evidence) == 0 {
		content.WriteString("None yet\n")
	} else {
		for _, e := range snapshot.Evidence {
			content.WriteString("• " + e + "\n")
		}
	}
	content.WriteString("\n")

	if snapshot.AIRevealed {
		content.WriteString(whisperStyle.Render("The AI has spoken.") + "\n")
	}
	if snapshot.AIDisappeared {
		content.WriteString(moodStyle.Render("The signal is gone.") + "\n")
	}
	if snapshot.USBKeyFound {
		content.WriteString("USB key located.\n")
	}
	if snapshot.AIRevealed || snapshot.AIDisappeared || snapshot.USBKeyFound {
		content.WriteString("\n")
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• /evidence: Evidence\n")
	content.WriteString("• /copy: Copy transcript\n")

	m.metaViewport.SetContent(content.String())
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))
	m.textarea.Reset()

	switch cmd {
	case "/help":
		m.notice = "Ask Lola about the night of the theft. Watch her mood and the tension meter. /evidence lists findings, /copy copies the transcript."
	case "/evidence":
		snapshot := m.orch.Snapshot()
		if len(snapshot.Evidence) == 0 {
			m.notice = "No evidence collected yet."
		} else {
			m.notice = "Evidence: " + strings.Join(snapshot.Evidence, "; ")
		}
	case "/copy":
		return m, m.copyTranscript()
	case "/quit":
		m.showQuitModal = true
		return m, nil
	default:
		m.notice = "Unknown command: " + cmd
	}

	m.writeChatContent()
	return m, nil
}

func (m ConsoleUI) copyTranscript() tea.Cmd {
	return func() tea.Msg {
		snapshot := m.orch.Snapshot()
		var sb strings.Builder
		for _, msg := range snapshot.Transcript {
			label, _ := speakerLabel(msg.Speaker)
			if label == "" {
				label = "Narrator"
			}
			sb.WriteString(label + ": " + msg.Text + "\n")
		}
		return clipboardMsg{clipboard.WriteAll(sb.String())}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave the interrogation?"))
	content.WriteString("\n\n")
	content.WriteString("The case will remain open on the server.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderCredits() string {
	snapshot := m.orch.Snapshot()

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("CASE CLOSED"))
	content.WriteString("\n\n")
	content.WriteString("The Mistral Affair\n\n")
	content.WriteString("Lola Chen confessed to copying the model weights.\n")
	content.WriteString("The USB key was recovered from her apartment.\n")
	content.WriteString("The AI's final transmission remains unexplained.\n\n")
	content.WriteString(fmt.Sprintf("Evidence collected: %d\n", len(snapshot.Evidence)))
	content.WriteString(fmt.Sprintf("Final tension: %d/%d\n", snapshot.Tension, game.MaxTension))
	content.WriteString("\n")
	content.WriteString(promptStyle.Render("Press V to review the transcript, Ctrl+C to exit."))

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if m.showCredits && !m.hideCredits && !m.busy {
		return m.renderCredits()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.72) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", chatWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}
