package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/noirlabs/interrogation-engine/pkg/dialogue"
	"github.com/noirlabs/interrogation-engine/pkg/game"
)

type ConsoleConfig struct {
	APIBaseURL string
	Timeout    time.Duration
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func main() {
	cfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		Timeout:    60 * time.Second,
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	st := game.NewState()

	// Online mode proxies turns through the API; offline mode runs the
	// keyword generator in process. The interrogation plays either way.
	var provider dialogue.TurnProvider
	offline := false
	if testConnection(client, cfg.APIBaseURL) {
		serverState, err := createSession(client, cfg.APIBaseURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create session: %v\n", err)
			os.Exit(1)
		}
		st.ID = serverState.ID
		provider = &apiProvider{client: client, baseURL: cfg.APIBaseURL, sessionID: st.ID}
	} else {
		offline = true
		provider = dialogue.NewFallbackProvider()
	}

	events := make(chan dialogue.Event, 64)
	orch := dialogue.New(st, provider,
		dialogue.WithListener(func(e dialogue.Event) { events <- e }))

	p := tea.NewProgram(NewConsoleUI(cfg, orch, events, offline),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
