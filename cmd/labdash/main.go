package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"labdash/internal/authflow"
	"labdash/internal/config"
	"labdash/internal/eventbus"
	"labdash/internal/ui"
)

func main() {
	backendURL := flag.String("backend", "", "override the backend base URL from the config file")
	flag.Parse()

	// Set up logging
	logFile, err := os.OpenFile("labdash.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Could not open log file: %v", err)
	} else {
		defer logFile.Close()
		log.SetOutput(logFile)
	}

	// Create event bus
	bus := eventbus.New()
	defer bus.Stop()

	// Load configuration
	configSvc := config.NewConfigServiceWithBus(bus)
	cfg, err := configSvc.Load()
	if err != nil {
		log.Printf("Error loading config: %v", err)
		cfg = config.DefaultConfig()
	}
	if *backendURL != "" {
		cfg.BaseURL = *backendURL
	}

	tokens := authflow.NewTokenStore(cfg, configSvc, bus)
	authFlag := authflow.NewFlag()

	// Create UI model
	uiModel := ui.NewModel(cfg, configSvc, bus, tokens, authFlag)

	// Create Bubble Tea program
	p := tea.NewProgram(uiModel, tea.WithAltScreen())
	uiModel.SetProgram(p)

	// Forward bus events to the UI
	eventChan := make(chan eventbus.DomainEvent, 100)
	forward := func(e eventbus.DomainEvent) {
		select {
		case eventChan <- e:
		default:
			log.Println("Event channel full, dropping event")
		}
	}
	bus.Subscribe(eventbus.EventError, forward)
	bus.Subscribe(eventbus.EventSessionExpired, forward)
	bus.Subscribe(eventbus.EventTokenUpdated, forward)
	go func() {
		for event := range eventChan {
			p.Send(ui.EventMsg{Event: event})
		}
	}()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		p.Quit()
	}()

	// Run the UI
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
