package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/rreader/internal/brain"
	"github.com/abelbrown/rreader/internal/config"
	"github.com/abelbrown/rreader/internal/enrich"
	"github.com/abelbrown/rreader/internal/feed"
	"github.com/abelbrown/rreader/internal/logging"
	"github.com/abelbrown/rreader/internal/ui"
)

func main() {
	dataDir, err := config.DefaultDataDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "rreader: %v\n", err)
		os.Exit(1)
	}

	if err := logging.Init(dataDir); err != nil {
		fmt.Fprintf(os.Stderr, "rreader: %v\n", err)
		os.Exit(1)
	}
	defer logging.Close()

	categories, err := config.LoadCategories(dataDir)
	if err != nil {
		logging.Error("startup failed", "err", err)
		fmt.Fprintf(os.Stderr, "rreader: %v\n", err)
		os.Exit(1)
	}

	gemini := config.LoadGemini(dataDir)
	provider := brain.NewGeminiProvider(gemini.APIKey, gemini.Model)

	fetcher := feed.NewFetcher(15 * time.Second)
	aggregator := feed.NewAggregator(dataDir, fetcher)
	translator := enrich.NewTranslator(provider, dataDir, gemini.Language)
	summarizer := enrich.NewSummarizer(provider, gemini.Language)

	app := ui.New(ui.Options{
		Categories:   categories,
		Aggregator:   aggregator,
		Translator:   translator,
		Summarizer:   summarizer,
		OpenURL:      openBrowser,
		BackendReady: provider.Available(),
	})

	program := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		logging.Error("program exited with error", "err", err)
		fmt.Fprintf(os.Stderr, "rreader: %v\n", err)
		os.Exit(1)
	}
}

// openBrowser launches the platform's URL handler detached from the
// terminal the UI owns.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
