package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/route-agent/internal/agent"
	"github.com/jwebster45206/route-agent/internal/config"
	"github.com/jwebster45206/route-agent/internal/logger"
	"github.com/jwebster45206/route-agent/internal/services"
	"github.com/jwebster45206/route-agent/pkg/milestone"
	"github.com/jwebster45206/route-agent/pkg/nav"
)

// The console is a read-only monitor: it runs the same decision cycle as
// the agent but never sends inputs and keeps its progress in memory, so
// it can be pointed at a live emulator without disturbing a run.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	host := services.NewEmulatorService(cfg.EmulatorURL, cfg.RefreshTimeout, log)

	route, checkpoints := milestone.DefaultRoute()
	engine, err := milestone.NewEngine(route, services.NewMockStorage(), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid milestone route: %v\n", err)
		os.Exit(1)
	}
	router := milestone.NewRouter(engine, checkpoints)
	tracker := nav.NewOutcomeTracker(nav.DefaultTrackerConfig(), log)
	sync := agent.NewSynchronizer(host, cfg.RefreshTimeout, cfg.FailureThreshold, log)
	loop := agent.NewLoop(sync, engine, router, tracker, host, nil, log)

	p := tea.NewProgram(NewConsoleUI(loop), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}

	if err := host.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close emulator connection: %v\n", err)
	}
}
