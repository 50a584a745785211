package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"boardkit/client"
	"boardkit/dash"
	"boardkit/session"
)

func main() {
	baseURL := os.Getenv("BOARDKIT_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	sessions, err := session.NewStore()
	if err != nil {
		log.Fatalf("session store: %v", err)
	}
	saved, err := sessions.Load()
	if err != nil {
		log.Warnf("ignoring unreadable session: %v", err)
		saved = session.Session{}
	}

	c := client.New(baseURL)
	c.Token = saved.Token

	program := tea.NewProgram(dash.New(c, sessions, saved), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.Fatalf("dashboard: %v", err)
	}
}
