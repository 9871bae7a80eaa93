// Package main is the entry point for the AirDevs console.
package main

import (
	"fmt"
	"os"

	"github.com/airdevs/console/internal/app"
	"github.com/airdevs/console/internal/config"
	"github.com/airdevs/console/internal/tui"
	"github.com/airdevs/console/internal/tui/events"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; AIRDEVS_* variables override config.json.
	_ = godotenv.Load()

	workingDir, err := os.Getwd()
	if err != nil {
		workingDir = "."
	}

	configManager := config.NewManager(workingDir)
	if err := configManager.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	cfg := configManager.Get()

	eventBroker := events.NewBroker()
	application := app.New(cfg, eventBroker)
	defer application.Shutdown()

	// The scheduler drives the photo-analyzer queue every 2s for the
	// whole life of the program; ticks are no-ops while the queue is
	// empty.
	application.Scheduler.Start()

	p := tea.NewProgram(tui.New(application, eventBroker), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
