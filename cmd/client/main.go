package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/acadien/deuxcents/internal/client"
	"github.com/acadien/deuxcents/internal/tui"
)

var CLI struct {
	Server   string `short:"s" env:"SERVER_URL" default:"http://localhost:8080" help:"Server URL to connect to"`
	Player   string `short:"p" env:"PLAYER_NAME" help:"Player name"`
	LogLevel string `short:"l" default:"info" help:"Log level (debug, info, warn, error)"`
	LogFile  string `default:"deuxcents-client.log" help:"Log file path"`
}

func main() {
	kctx := kong.Parse(&CLI)

	if CLI.Player == "" {
		fmt.Print("Enter your player name: ")
		var input string
		_, _ = fmt.Scanln(&input)
		CLI.Player = strings.TrimSpace(input)
		if CLI.Player == "" {
			fmt.Println("Player name is required")
			kctx.Exit(1)
		}
	}

	// The TUI owns the terminal, so logs go to a file.
	logFile, err := os.OpenFile(CLI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		fmt.Printf("Failed to open log file: %v\n", err)
		kctx.Exit(1)
	}
	defer func() { _ = logFile.Close() }()

	logger := log.New(logFile)
	switch CLI.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	lipgloss.SetColorProfile(termenv.ColorProfile())

	wsClient := client.NewClient(CLI.Server, logger)
	if err := wsClient.Connect(); err != nil {
		fmt.Printf("Failed to connect to server: %v\n", err)
		kctx.Exit(1)
	}
	defer func() { _ = wsClient.Disconnect() }()

	logger.Info("starting client", "server", CLI.Server, "player", CLI.Player)

	model := tui.NewModel(wsClient, CLI.Player, logger)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		fmt.Printf("Client failed: %v\n", err)
		kctx.Exit(1)
	}
}
