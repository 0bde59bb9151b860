package main

import (
	"fmt"
	"os"

	"github.com/nconklindev/sheetwise/internal/config"
	"github.com/nconklindev/sheetwise/internal/logging"
	"github.com/nconklindev/sheetwise/internal/processor"
	"github.com/nconklindev/sheetwise/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Handle --version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("sheetwise %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
		os.Exit(0)
	}

	if len(os.Args) < 2 {
		if err := runInteractive(); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var err error
	switch os.Args[1] {
	case "standardize":
		err = runStandardize(os.Args[2:])
	case "split":
		err = runSplit(os.Args[2:])
	case "run":
		err = runPipeline(os.Args[2:])
	case "preview":
		err = runPreview(os.Args[2:])
	case "help", "-h", "--help":
		usage(os.Stdout)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage(os.Stderr)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runInteractive() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs only go to the file.
	cfg.Logging.Output = "file"
	logger, closeLog, err := logging.New(cfg.Logging, os.Stdout)
	if err != nil {
		return err
	}
	defer closeLog()

	opts := sheetOptions(cfg)
	model := ui.InitialModel(cfg, opts, processor.New(opts, logger))

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}
