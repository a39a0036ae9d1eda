package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pankudi/visualizer/internal/app"
	"github.com/pankudi/visualizer/internal/client"
	"github.com/pankudi/visualizer/internal/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	backendURL := flag.String("url", "", "Override backend base URL (e.g. http://localhost:8000)")
	logFile := flag.String("log", "", "Write logs to this file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *backendURL != "" {
		cfg.Client.BackendURL = *backendURL
	}
	if *logFile != "" {
		cfg.Client.LogFile = *logFile
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.Client.LogFile != "" {
		f, err := tea.LogToFile(cfg.Client.LogFile, "pankudi")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	httpClient := client.NewHTTPClient(cfg.Client.BackendURL)
	httpClient.SetTimeouts(cfg.Client.StartTimeout, cfg.Client.StatusTimeout)

	m := app.New(cfg.Client, httpClient)
	p := tea.NewProgram(m, tea.WithAltScreen())

	final, err := p.Run()
	if fm, ok := final.(app.Model); ok {
		fm.Close()
	} else {
		m.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
